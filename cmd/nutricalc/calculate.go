package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ginutri/internal/nutrition"
)

type calculateFlags struct {
	sex      string
	weight   float64
	height   float64
	age      int
	activity string
	goal     string
	asJSON   bool
}

func newCalculateCmd() *cobra.Command {
	var f calculateFlags
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calcula las metas nutricionales a partir de las respuestas del onboarding",
		Example: "  nutricalc calculate --sex female --weight 68 --height 165 --age 32 " +
			"--activity moderate --goal lose_weight",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalculate(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.sex, "sex", "", "male, female u other")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "peso en kg")
	cmd.Flags().Float64Var(&f.height, "height", 0, "altura en cm")
	cmd.Flags().IntVar(&f.age, "age", 0, "edad en anos")
	cmd.Flags().StringVar(&f.activity, "activity", "", "sedentary, light, moderate o intense")
	cmd.Flags().StringVar(&f.goal, "goal", "", "lose_weight, gain_muscle, maintain, re-educate o energy")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "imprime el resultado en JSON")
	for _, name := range []string{"sex", "weight", "height", "age", "activity", "goal"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runCalculate(cmd *cobra.Command, f calculateFlags) error {
	sex, err := nutrition.ParseSex(f.sex)
	if err != nil {
		return err
	}
	level, err := nutrition.ParseActivityLevel(f.activity)
	if err != nil {
		return err
	}
	goal, err := nutrition.ParseGoal(f.goal)
	if err != nil {
		return err
	}
	targets, err := nutrition.Calculate(nutrition.Answers{
		Sex:           sex,
		WeightKg:      f.weight,
		HeightCm:      f.height,
		AgeYears:      f.age,
		ActivityLevel: level,
		Goal:          goal,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(targets)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BMI\t%.1f (%s)\n", targets.BMI, nutrition.BMICategory(targets.BMI))
	fmt.Fprintf(w, "BMR\t%.0f kcal\n", targets.BasalMetabolicRate)
	fmt.Fprintf(w, "TDEE\t%.0f kcal\n", targets.TotalDailyEnergyExpenditure)
	fmt.Fprintf(w, "Calories\t%.0f kcal\n", targets.DailyCalories)
	fmt.Fprintf(w, "Protein\t%d g\n", targets.ProteinGrams)
	fmt.Fprintf(w, "Carbs\t%d g\n", targets.CarbGrams)
	fmt.Fprintf(w, "Fat\t%d g\n", targets.FatGrams)
	return w.Flush()
}
