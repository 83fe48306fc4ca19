package registry

import (
	"datamart/internal/classify"
	"datamart/internal/table"
)

// Summary aggregates headline statistics over the loaded datasets. Fields
// are nil when the backing dataset or column is unavailable, so callers can
// render exactly what the data supports.
type Summary struct {
	TotalMembers *int     `json:"total_members,omitempty"`
	TotalOrders  *int     `json:"total_orders,omitempty"`
	PaidOrders   *int     `json:"paid_orders,omitempty"`
	TotalRevenue *float64 `json:"total_revenue,omitempty"`
}

// paidStatus is the exact payment-status value that marks an order as paid.
const paidStatus = "Paid"

// Summarize computes the aggregate summary. Every part is independent: a
// missing payments dataset still yields member and order counts.
func (r *Registry) Summarize() Summary {
	var s Summary

	if members, ok := r.Dataset(classify.RoleMemberData); ok {
		n := members.NumRows()
		s.TotalMembers = &n
	}

	if orders, ok := r.Dataset(classify.RoleOrders); ok {
		n := orders.NumRows()
		s.TotalOrders = &n

		if statusIdx := table.Resolve(orders.Columns, "status", "payment"); statusIdx >= 0 {
			paid := 0
			for _, row := range orders.Rows {
				if cell(row, statusIdx) == paidStatus {
					paid++
				}
			}
			s.PaidOrders = &paid
		}
	}

	if payments, ok := r.Dataset(classify.RolePayments); ok {
		// The revenue column is the first "amount" column that is not a
		// processing-fee column.
		amountIdx := table.ResolveExcluding(payments.Columns, []string{"amount"}, []string{"processing"})
		if amountIdx >= 0 {
			total := 0.0
			for _, row := range payments.Rows {
				if v, ok := table.ParseNumber(cell(row, amountIdx)); ok {
					total += v
				}
			}
			s.TotalRevenue = &total
		}
	}

	return s
}
