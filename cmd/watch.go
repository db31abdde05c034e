package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	redisclient "github.com/lgrosz/climb-catalog/internal/clients/redis"
	"github.com/lgrosz/climb-catalog/internal/events"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print committed change events from redis as JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("watch needs REDIS_ADDR")
		}
		bus, err := redisclient.NewEventBus(log, cfg.Redis)
		if err != nil {
			return err
		}
		defer bus.Close()

		enc := json.NewEncoder(os.Stdout)
		err = bus.StartForwarder(cmd.Context(), func(ev events.Event) {
			if err := enc.Encode(ev); err != nil {
				log.Warn("write event", "error", err)
			}
		})
		if err != nil {
			return err
		}
		log.Info("watching change events", "channel", cfg.Redis.Channel)
		<-cmd.Context().Done()
		return nil
	},
}
