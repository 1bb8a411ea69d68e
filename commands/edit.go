package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

var (
	editSubject string
	editAmount  string
	editUnit    string
	editSubtype string
	editAt      string
)

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change fields of a recorded intake",
	Long: `Change one or more fields of an intake. Only the given flags are updated.

Setting --subtype LOST moves the intake to the NO subject.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var deleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a recorded intake",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)

	editCmd.Flags().StringVar(&editSubject, "subject", "", "Subject (AH, EI, NO)")
	editCmd.Flags().StringVar(&editAmount, "amount", "", "Dosage amount")
	editCmd.Flags().StringVarP(&editUnit, "unit", "u", "", "Dosage unit (mg or ml)")
	editCmd.Flags().StringVarP(&editSubtype, "subtype", "s", "", "Route (IV, IM, PO, IV+PO, VTRK, LOST)")
	editCmd.Flags().StringVar(&editAt, "at", "", "Intake time (15:04, 2006-01-02 15:04 or RFC3339)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	patch, err := buildPatch(cmd)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Update(cmd.Context(), args[0], patch); err != nil {
		return err
	}
	updated, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := updated.ValidateEntry(); err != nil {
		util.LogWarn("Edited intake exceeds entry bounds", util.F("id", updated.ID), util.F("error", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s %s %s at %s\n",
		updated.ID,
		updated.Subject,
		util.FormatAmountWithUnit(updated.DosageAmount, updated.DosageUnit.Label()),
		subtypeLabel(updated.Subtype),
		util.GetTimeProvider().Format(updated.Timestamp, "2006-01-02 15:04"))
	return nil
}

func buildPatch(cmd *cobra.Command) (model.IntakePatch, error) {
	var patch model.IntakePatch
	flags := cmd.Flags()

	if flags.Changed("subject") {
		subject, err := model.ParseSubject(editSubject)
		if err != nil {
			return patch, err
		}
		patch.Subject = &subject
	}
	if flags.Changed("amount") {
		amount, err := strconv.ParseFloat(editAmount, 64)
		if err != nil {
			return patch, &model.ValidationError{Field: "dosageAmount", Reason: fmt.Sprintf("%q is not a number", editAmount)}
		}
		patch.DosageAmount = &amount
	}
	if flags.Changed("unit") {
		unit, err := model.ParseDosageUnit(editUnit)
		if err != nil {
			return patch, err
		}
		patch.DosageUnit = &unit
	}
	if flags.Changed("subtype") {
		subtype, err := model.ParseSubtype(editSubtype)
		if err != nil {
			return patch, err
		}
		patch.Subtype = &subtype
	}
	if flags.Changed("at") {
		at, err := parseAt(editAt, now())
		if err != nil {
			return patch, err
		}
		patch.Timestamp = &at
	}
	if patch.IsEmpty() {
		return patch, fmt.Errorf("nothing to change: pass at least one of --subject, --amount, --unit, --subtype, --at")
	}
	return patch, nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	util.LogInfo("Intake deleted", util.F("id", args[0]))
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
