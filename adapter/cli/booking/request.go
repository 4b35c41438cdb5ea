package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/scheduling/application/commands"
	"github.com/lektio/lektio/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	requestTutorID   string
	requestStudentID string
	requestDate      string
	requestStartTime string
	requestEndTime   string
	requestTimezone  string
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request a lesson booking",
	Long: `Request a lesson with a tutor. The requested window must fall inside
the tutor's availability and must not overlap a scheduled booking; a
lost race against a concurrent request is reported as slot taken.

Examples:
  lektio booking request --tutor <id> --student <id> --date 2026-03-14 --start 09:00 --end 10:00
  lektio booking request --tutor <id> --student <id> --date 2026-03-14 --start 10:00 --end 11:00 --tz Europe/Berlin`,
	Aliases: []string{"book", "new"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RequestBookingHandler == nil {
			fmt.Println("Booking commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		tutorID, err := parseID(requestTutorID, "tutor")
		if err != nil {
			return err
		}
		studentID := app.CurrentUserID
		if requestStudentID != "" {
			studentID, err = parseID(requestStudentID, "student")
			if err != nil {
				return err
			}
		}

		loc, err := time.LoadLocation(requestTimezone)
		if err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
		day, err := time.Parse("2006-01-02", requestDate)
		if err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
		}
		startParsed, err := time.Parse("15:04", requestStartTime)
		if err != nil {
			return fmt.Errorf("invalid start time format, use HH:MM: %w", err)
		}
		endParsed, err := time.Parse("15:04", requestEndTime)
		if err != nil {
			return fmt.Errorf("invalid end time format, use HH:MM: %w", err)
		}
		start := time.Date(day.Year(), day.Month(), day.Day(),
			startParsed.Hour(), startParsed.Minute(), 0, 0, loc)
		end := time.Date(day.Year(), day.Month(), day.Day(),
			endParsed.Hour(), endParsed.Minute(), 0, 0, loc)

		result, err := app.RequestBookingHandler.Handle(cmd.Context(), commands.RequestBookingCommand{
			TutorID:   tutorID,
			StudentID: studentID,
			Start:     start,
			End:       end,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrSlotTaken):
				return fmt.Errorf("slot %s - %s is already taken", requestStartTime, requestEndTime)
			case errors.Is(err, domain.ErrOutsideAvailability):
				return fmt.Errorf("requested window is outside the tutor's availability")
			default:
				return fmt.Errorf("failed to request booking: %w", err)
			}
		}

		fmt.Println("Booking scheduled")
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("  Time:       %s - %s\n", requestStartTime, requestEndTime)
		fmt.Printf("  Date:       %s\n", day.Format("Monday, January 2, 2006"))
		fmt.Printf("  Booking ID: %s\n", result.BookingID)
		fmt.Printf("  Version:    %d\n", result.Version)

		return nil
	},
}

func init() {
	requestCmd.Flags().StringVar(&requestTutorID, "tutor", "", "tutor ID (required)")
	requestCmd.Flags().StringVar(&requestStudentID, "student", "", "student ID (default: current user)")
	requestCmd.Flags().StringVarP(&requestDate, "date", "d", "", "lesson date (YYYY-MM-DD, required)")
	requestCmd.Flags().StringVar(&requestStartTime, "start", "", "start time (HH:MM, required)")
	requestCmd.Flags().StringVar(&requestEndTime, "end", "", "end time (HH:MM, required)")
	requestCmd.Flags().StringVar(&requestTimezone, "tz", "UTC", "IANA timezone the times are in")

	requestCmd.MarkFlagRequired("tutor")
	requestCmd.MarkFlagRequired("date")
	requestCmd.MarkFlagRequired("start")
	requestCmd.MarkFlagRequired("end")
}
