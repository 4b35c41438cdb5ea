package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/scheduling/application/commands"
	"github.com/lektio/lektio/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	addTutorID   string
	addKind      string
	addWeekday   string
	addStartTime string
	addEndTime   string
	addTimezone  string
	addDate      string
	addFrom      string
	addUntil     string
	addBlocked   bool
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an availability window",
	Long: `Add a recurring availability rule or a one-off window for a tutor.

Recurring rules repeat weekly in the tutor's timezone and survive DST
transitions. One-off windows are absolute instants; pass --blocked to
carve time out of a recurring rule instead of opening it.

Examples:
  lektio availability add --tutor <id> --kind recurring --weekday monday --start 09:00 --end 17:00 --tz Europe/Berlin
  lektio availability add --tutor <id> --kind oneoff --date 2026-03-14 --start 09:00 --end 11:00 --tz UTC
  lektio availability add --tutor <id> --kind oneoff --date 2026-03-14 --start 12:00 --end 13:00 --blocked`,
	Aliases: []string{"window", "new"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AddWindowHandler == nil {
			fmt.Println("Availability commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		tutorID, err := resolveTutorID(app.CurrentUserID, addTutorID)
		if err != nil {
			return err
		}

		cmdData := commands.AddWindowCommand{
			TutorID: tutorID,
		}

		switch strings.ToLower(addKind) {
		case "recurring":
			weekday, ok := weekdayNames[strings.ToLower(addWeekday)]
			if !ok {
				return fmt.Errorf("invalid weekday: %s (valid: monday..sunday)", addWeekday)
			}
			from := time.Now()
			if addFrom != "" {
				from, err = time.Parse("2006-01-02", addFrom)
				if err != nil {
					return fmt.Errorf("invalid from date, use YYYY-MM-DD: %w", err)
				}
			}
			var until *time.Time
			if addUntil != "" {
				u, err := time.Parse("2006-01-02", addUntil)
				if err != nil {
					return fmt.Errorf("invalid until date, use YYYY-MM-DD: %w", err)
				}
				until = &u
			}
			cmdData.Kind = domain.WindowKindRecurring
			cmdData.Weekday = weekday
			cmdData.LocalStart = addStartTime
			cmdData.LocalEnd = addEndTime
			cmdData.Timezone = addTimezone
			cmdData.EffectiveFrom = from
			cmdData.EffectiveUntil = until

		case "oneoff":
			if addDate == "" {
				return fmt.Errorf("one-off windows require --date")
			}
			loc, err := time.LoadLocation(addTimezone)
			if err != nil {
				return fmt.Errorf("invalid timezone: %w", err)
			}
			start, end, err := combineDateTimes(addDate, addStartTime, addEndTime, loc)
			if err != nil {
				return err
			}
			cmdData.Kind = domain.WindowKindOneOff
			cmdData.Start = start
			cmdData.End = end
			cmdData.Blocked = addBlocked

		default:
			return fmt.Errorf("invalid window kind: %s (valid: recurring, oneoff)", addKind)
		}

		result, err := app.AddWindowHandler.Handle(cmd.Context(), cmdData)
		if err != nil {
			return fmt.Errorf("failed to add window: %w", err)
		}

		fmt.Printf("Added %s window\n", strings.ToLower(addKind))
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("  Tutor:     %s\n", tutorID)
		fmt.Printf("  Window ID: %s\n", result.WindowID)

		return nil
	},
}

func combineDateTimes(date, start, end string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	startParsed, err := time.Parse("15:04", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time format, use HH:MM: %w", err)
	}
	endParsed, err := time.Parse("15:04", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time format, use HH:MM: %w", err)
	}
	startTime := time.Date(day.Year(), day.Month(), day.Day(),
		startParsed.Hour(), startParsed.Minute(), 0, 0, loc)
	endTime := time.Date(day.Year(), day.Month(), day.Day(),
		endParsed.Hour(), endParsed.Minute(), 0, 0, loc)
	return startTime, endTime, nil
}

func resolveTutorID(current uuid.UUID, flag string) (uuid.UUID, error) {
	if flag != "" {
		id, err := uuid.Parse(flag)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid tutor ID: %w", err)
		}
		return id, nil
	}
	if current == uuid.Nil {
		return uuid.Nil, fmt.Errorf("no tutor ID: pass --tutor or configure a current user")
	}
	return current, nil
}

func init() {
	addCmd.Flags().StringVar(&addTutorID, "tutor", "", "tutor ID (default: current user)")
	addCmd.Flags().StringVarP(&addKind, "kind", "k", "oneoff", "window kind (recurring, oneoff)")
	addCmd.Flags().StringVarP(&addWeekday, "weekday", "w", "", "weekday for recurring rules (monday..sunday)")
	addCmd.Flags().StringVar(&addStartTime, "start", "", "start time (HH:MM, required)")
	addCmd.Flags().StringVar(&addEndTime, "end", "", "end time (HH:MM, required)")
	addCmd.Flags().StringVar(&addTimezone, "tz", "UTC", "IANA timezone the times are in")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "date for one-off windows (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addFrom, "from", "", "first date a recurring rule applies (YYYY-MM-DD, default: today)")
	addCmd.Flags().StringVar(&addUntil, "until", "", "last date a recurring rule applies (YYYY-MM-DD)")
	addCmd.Flags().BoolVar(&addBlocked, "blocked", false, "mark the one-off window as blocked time")

	addCmd.MarkFlagRequired("start")
	addCmd.MarkFlagRequired("end")
}
