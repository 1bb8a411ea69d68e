package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/core/units"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

var (
	addUnit    string
	addSubtype string
	addAt      string
)

var addCmd = &cobra.Command{
	Use:   "add SUBJECT AMOUNT",
	Short: "Record an intake",
	Long: `Record one intake for subject AH or EI, or a lost dose with --subtype LOST.

Without --subtype the subject's usual route is used (AH: IM, EI: IV).
Without --at the intake is recorded at the current time.`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addUnit, "unit", "u", "mg",
		"Dosage unit (mg or ml)")
	addCmd.Flags().StringVarP(&addSubtype, "subtype", "s", "",
		"Route (IV, IM, PO, IV+PO, VTRK, LOST)")
	addCmd.Flags().StringVar(&addAt, "at", "",
		"Intake time (15:04, 2006-01-02 15:04 or RFC3339)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	current := now()
	event, err := buildIntake(args[0], args[1], addUnit, addSubtype, cmd.Flags().Changed("subtype"), addAt, current)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Insert(cmd.Context(), event)
	if err != nil {
		return err
	}
	util.LogInfo("Intake recorded", util.F("id", id), util.F("subject", event.Subject.String()))
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s: %s %s %s at %s%s\n",
		id,
		event.Subject,
		util.FormatAmountWithUnit(event.DosageAmount, event.DosageUnit.Label()),
		subtypeLabel(event.Subtype),
		util.GetTimeProvider().Format(event.Timestamp, "2006-01-02 15:04"),
		massEquivalent(event))
	return nil
}

// buildIntake parses the command line form of an intake and applies the
// entry bounds.
func buildIntake(subjectArg, amountArg, unitArg, subtypeArg string, subtypeSet bool, atArg string, current time.Time) (model.IntakeEvent, error) {
	subject, err := model.ParseSubject(subjectArg)
	if err != nil {
		return model.IntakeEvent{}, err
	}
	amount, err := strconv.ParseFloat(amountArg, 64)
	if err != nil {
		return model.IntakeEvent{}, &model.ValidationError{Field: "dosageAmount", Reason: fmt.Sprintf("%q is not a number", amountArg)}
	}
	unit, err := model.ParseDosageUnit(unitArg)
	if err != nil {
		return model.IntakeEvent{}, err
	}
	subtype := subject.DefaultSubtype()
	if subtypeSet {
		if subtype, err = model.ParseSubtype(subtypeArg); err != nil {
			return model.IntakeEvent{}, err
		}
	}
	var at time.Time
	if atArg != "" {
		if at, err = parseAt(atArg, current); err != nil {
			return model.IntakeEvent{}, err
		}
	}

	event := model.NewIntakeEvent(subject, amount, unit, subtype, at, current)
	if err := event.ValidateEntry(); err != nil {
		return model.IntakeEvent{}, err
	}
	return event, nil
}

// parseAt reads a time in the configured timezone. A bare clock time is
// taken on the day of current.
func parseAt(value string, current time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	loc := util.GetTimeProvider().Location()

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	if clock, err := time.ParseInLocation("15:04", value, loc); err == nil {
		day := util.StartOfDay(current, loc)
		return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, &model.ValidationError{
		Field:  "timestamp",
		Reason: fmt.Sprintf("cannot parse %q (expected 15:04, 2006-01-02 15:04 or RFC3339)", value),
	}
}

func subtypeLabel(s model.Subtype) string {
	if s == model.SubtypeNone {
		return "-"
	}
	return string(s)
}

// massEquivalent renders " (≈ 40 mg)" for volume doses, empty otherwise
func massEquivalent(e model.IntakeEvent) string {
	if e.DosageUnit != model.UnitVolume {
		return ""
	}
	mass, err := units.Convert(e.DosageAmount, e.DosageUnit, model.UnitMass)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" (≈ %s)", util.FormatAmountWithUnit(mass, model.UnitMass.Label()))
}
