package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"storefront-tracker/internal/core/config"
	"storefront-tracker/internal/core/logger"
	orderdomain "storefront-tracker/internal/features/orders/domain"
	"storefront-tracker/internal/features/tracking/domain"
	"storefront-tracker/internal/features/tracking/engine"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type deriveOptions struct {
	orderPath string
	feedPath  string
	now       string
}

func newDeriveCommand(v *viper.Viper) *cobra.Command {
	opts := &deriveOptions{}

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive the tracking view of an exported order",
		Long: `Derive the five tracking stages, action eligibility and first product of
an order and print them as JSON.

The order file holds a single order object. The optional feed file holds
{"trackingHistory": [...]}. Use "-" to read one of the two from stdin.

Examples:
  # Preview an order as of now
  stagectl derive --order order.json

  # Merge a carrier feed and evaluate at a fixed instant
  stagectl derive --order order.json --feed feed.json --now 2024-03-10T12:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(cmd, v, opts)
		},
	}

	cmd.Flags().StringVar(&opts.orderPath, "order", "", "order JSON file, or - for stdin")
	cmd.Flags().StringVar(&opts.feedPath, "feed", "", "tracking feed JSON file")
	cmd.Flags().StringVar(&opts.now, "now", "", "evaluation instant in RFC3339 (default: current time)")
	cmd.Flags().Int("window-days", 7, "exchange/return window in days")
	cmd.Flags().String("date-layout", "02 Jan 2006", "Go layout for stage dates")
	cmd.Flags().String("timezone", "UTC", "IANA zone for stage dates")
	_ = cmd.MarkFlagRequired("order")

	_ = v.BindPFlag("EXCHANGE_RETURN_WINDOW_DAYS", cmd.Flags().Lookup("window-days"))
	_ = v.BindPFlag("DATE_LAYOUT", cmd.Flags().Lookup("date-layout"))
	_ = v.BindPFlag("DATE_TIMEZONE", cmd.Flags().Lookup("timezone"))

	return cmd
}

func runDerive(cmd *cobra.Command, v *viper.Viper, opts *deriveOptions) error {
	log := logger.Named("stagectl")

	if opts.orderPath == "-" && opts.feedPath == "-" {
		return fmt.Errorf("--order and --feed cannot both read from stdin")
	}

	engineCfg, err := engine.FromAppConfig(config.TrackingConfig{
		ExchangeReturnWindowDays: v.GetInt("EXCHANGE_RETURN_WINDOW_DAYS"),
		DateLayout:               v.GetString("DATE_LAYOUT"),
		Timezone:                 v.GetString("DATE_TIMEZONE"),
	})
	if err != nil {
		return err
	}

	now := time.Now()
	if opts.now != "" {
		now, err = time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	var order orderdomain.Order
	if err := readJSON(cmd.InOrStdin(), opts.orderPath, &order); err != nil {
		return fmt.Errorf("failed to read order: %w", err)
	}

	if !order.OrderStatus.IsKnown() {
		log.Warn("Unknown order status, treating as pending", zap.String("status", string(order.OrderStatus)))
	}
	if order.OrderStatus == orderdomain.OrderStatusDelivered && order.DeliveredAt == nil {
		log.Warn("Delivered order has no deliveredAt; exchange window cannot be measured")
	}

	var feed *domain.TrackingFeed
	if opts.feedPath != "" {
		feed = &domain.TrackingFeed{}
		if err := readJSON(cmd.InOrStdin(), opts.feedPath, feed); err != nil {
			return fmt.Errorf("failed to read feed: %w", err)
		}
		log.Debug("Loaded tracking feed", zap.Int("events", len(feed.TrackingHistory)))
	}

	view := engine.New(engineCfg).View(order, feed, now)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func readJSON(stdin io.Reader, path string, dst any) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return json.NewDecoder(r).Decode(dst)
}
