package catalog

import (
	"gorm.io/gorm"

	domain "github.com/lgrosz/climb-catalog/internal/domain/catalog"
)

func updateNames(conn *gorm.DB, model any, id int64, names domain.Names) error {
	if names == nil {
		names = domain.Names{}
	}
	return conn.Model(model).Where("id = ?", id).Update("names", names).Error
}
