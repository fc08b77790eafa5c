package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanshika/clientdesk/internal/aggregation"
)

// BuildPrompt renders a view model into a fixed-layout prompt. The same view
// model always yields the same prompt.
func BuildPrompt(vm aggregation.ViewModel) string {
	var b strings.Builder
	d := vm.Dashboard
	fs := vm.FinancialSummary

	b.WriteString("You are assisting a bank relationship manager. ")
	b.WriteString("Write a concise narrative (at most five sentences) about the client below, ")
	b.WriteString("highlighting risks and one suggested next action. Do not invent figures.\n\n")

	fmt.Fprintf(&b, "Client: %s (%s)\n", vm.Client.Name, vm.Client.ID)
	fmt.Fprintf(&b, "Status: %s | Risk profile: %s", vm.Client.Status, vm.Client.RiskProfile)
	if vm.Client.RelationshipTier != "" {
		fmt.Fprintf(&b, " | Tier: %s", vm.Client.RelationshipTier)
	}
	b.WriteString("\n\n")

	b.WriteString("Balance sheet:\n")
	fmt.Fprintf(&b, "- Total assets: %.2f\n", d.TotalAssets)
	fmt.Fprintf(&b, "- Total liabilities: %.2f\n", d.TotalLiabilities)
	fmt.Fprintf(&b, "- Net position: %.2f\n", vm.Derived.NetPosition)
	fmt.Fprintf(&b, "- Products held: %d\n", d.ProductCount)

	b.WriteString("Cash flow:\n")
	fmt.Fprintf(&b, "- Monthly inflow: %.2f, outflow: %.2f, net: %.2f\n",
		fs.MonthlyInflow, fs.MonthlyOutflow, vm.Derived.MonthlyNetCashflow)
	fmt.Fprintf(&b, "- Savings rate: %.1f%%\n", vm.Derived.SavingsRate)

	b.WriteString("Risk:\n")
	fmt.Fprintf(&b, "- Credit utilisation: %.1f%% (%s risk, %s credit health)\n",
		vm.Derived.CreditUtilizationRate, vm.Derived.CreditUtilizationRisk, vm.Derived.CreditHealth)
	fmt.Fprintf(&b, "- Emergency fund: %.1f months (%s)\n",
		vm.Derived.EmergencyFundRatio, vm.Derived.EmergencyFundStatus)
	fmt.Fprintf(&b, "- Profitability score: %.0f/100\n", vm.Derived.ProfitabilityScore)

	if spending := fs.Behavior.CategorizedSpending; len(spending) > 0 {
		b.WriteString("Spending by category:\n")
		categories := make([]string, 0, len(spending))
		for k := range spending {
			categories = append(categories, k)
		}
		sort.Strings(categories)
		for _, k := range categories {
			fmt.Fprintf(&b, "- %s: %.2f\n", k, spending[k])
		}
	}

	if n := len(vm.Trends.Points); n > 0 && !vm.Trends.Synthetic {
		first, last := vm.Trends.Points[0], vm.Trends.Points[n-1]
		fmt.Fprintf(&b, "Trend %s to %s: CASA %.2f -> %.2f, investments %.2f -> %.2f, loans %.2f -> %.2f\n",
			first.Month, last.Month, first.CASA, last.CASA, first.Investments, last.Investments, first.Loans, last.Loans)
	}

	return b.String()
}
