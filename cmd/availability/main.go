// Command availability drives the booking page flow against a running
// booking server and prints the resulting calendar and departures.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"booking-server/api"
	"booking-server/bookingui"
	"booking-server/models"
	"booking-server/util"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"
)

type Args struct {
	Server   string         `arg:"-s,env:BOOKING_SERVER" default:"http://localhost:8080" help:"Booking server base URL."`
	Supplier string         `arg:"-p" help:"Supplier slug. Defaults to the server's default supplier."`
	Activity string         `arg:"-a" help:"Activity slug. Defaults to the server's default activity."`
	Date     string         `arg:"-d" help:"Selected date, YYYY-MM-DD. Defaults to today."`
	Month    string         `arg:"-m" help:"Visible month, YYYY-MM."`
	Guests   map[string]int `arg:"-g" help:"Guest counts, e.g. -g adult=2 child=1."`
	Timeout  time.Duration  `arg:"-t" default:"15s" help:"Overall timeout."`
}

func (Args) Description() string {
	return "Shows availability and departures for a booking page."
}

func main() {
	var args Args
	arg.MustParse(&args)

	logger := util.GetLogger()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), args.Timeout)
	defer cancel()

	if err := run(ctx, args, logger); err != nil {
		logger.Error("[Availability] failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args Args, logger *zap.Logger) error {
	fetcher := bookingui.NewHTTPFetcher(api.NewHTTPClient(args.Server).WithTimeout(args.Timeout))

	cfg, err := fetcher.FetchBootstrap(ctx, args.Supplier, args.Activity)
	if err != nil {
		return err
	}

	selected := cfg.Today
	if normalized, ok := util.NormalizeDate(args.Date); ok {
		selected = normalized
	}
	month := args.Month
	if month == "" && len(selected) >= 7 {
		month = selected[:7]
	}

	store := bookingui.NewStore(bookingui.State{
		SelectedDate: selected,
		VisibleMonth: month,
		GuestCounts:  guestCounts(cfg.GuestTypes, args.Guests),
	})
	orchestrator := bookingui.NewOrchestrator(store, cfg, fetcher, logger)
	defer orchestrator.Close()

	if err := load(ctx, orchestrator, store); err != nil {
		return err
	}

	s := store.Snapshot()
	fmt.Printf("%s / %s\n", cfg.SupplierName, cfg.ActivityName)
	util.PrintCalendarPartially(os.Stdout, &models.CalendarPayload{
		Calendar:  s.CalendarDays,
		Timeslots: s.Timeslots,
		Metadata:  bookingui.TypedMetadata(s.AvailabilityMetadata),
	})
	fmt.Printf("Departures on %s:\n", s.SelectedDate)
	util.PrintTimeslots(os.Stdout, s.Timeslots, s.SelectedTimeslotID)
	return nil
}

// maxLoads bounds how often load follows a moved selected date.
const maxLoads = 3

// load fetches availability and fetches again while the result keeps moving
// the selected date, so departures are shown for the date that is printed.
func load(ctx context.Context, o *bookingui.Orchestrator, store *bookingui.Store) error {
	for i := 0; i < maxLoads; i++ {
		before := store.Snapshot().SelectedDate
		if err := o.Load(ctx); err != nil {
			return err
		}
		if store.Snapshot().SelectedDate == before {
			return nil
		}
	}
	return nil
}

// guestCounts starts from each guest type's minimum and applies overrides.
func guestCounts(guestTypes []models.GuestType, overrides map[string]int) map[string]int {
	counts := make(map[string]int, len(guestTypes))
	for _, gt := range guestTypes {
		counts[gt.ID] = gt.Minimum
	}
	for id, n := range overrides {
		if n < 0 {
			n = 0
		}
		counts[id] = n
	}
	return counts
}
