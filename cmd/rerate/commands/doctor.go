package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// doctorCmd checks connectivity to the backing services
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database and Redis connectivity",
	Long: `Verifies the runtime wiring: loads config, pings PostgreSQL and
Redis, and prints connection-pool statistics.

Example:
  go run ./cmd/rerate doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Printf("Config loaded (env: %s)\n", rt.cfg.Env)

	status, err := rt.db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	fmt.Printf("PostgreSQL: ok (%v)\n", status.ResponseTime.Round(time.Millisecond))
	fmt.Printf("  pool: %d/%d connections, %d idle\n",
		status.TotalConns, status.MaxConns, status.IdleConns)

	if rt.redis.Enabled() {
		if err := rt.redis.Redis().Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		fmt.Println("Redis: ok")
	} else {
		fmt.Println("Redis: disabled, caching and rate limits are off")
	}

	fmt.Println("All checks passed")
	return nil
}
