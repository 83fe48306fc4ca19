package registry

import (
	"sort"
	"strings"
	"time"

	"datamart/internal/classify"
	"datamart/internal/table"
)

// SearchMembers returns roster rows where any name/email/member-like column
// contains the query, case-insensitively. Returns nil when no roster is
// loaded or no searchable column exists.
func (r *Registry) SearchMembers(query string) *table.Table {
	t, ok := r.Dataset(classify.RoleMemberData)
	if !ok {
		return nil
	}

	var searchCols []int
	for i, c := range t.Columns {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "name") || strings.Contains(lower, "email") || strings.Contains(lower, "member") {
			searchCols = append(searchCols, i)
		}
	}
	if len(searchCols) == 0 {
		return nil
	}

	q := strings.ToLower(query)
	return t.Filter(func(row []string) bool {
		for _, col := range searchCols {
			if col < len(row) && strings.Contains(strings.ToLower(row[col]), q) {
				return true
			}
		}
		return false
	})
}

// OrdersForMember returns the member's orders by exact case-insensitive email
// match.
func (r *Registry) OrdersForMember(email string) *table.Table {
	return r.rowsByEmail(classify.RoleOrders, email)
}

// PaymentsForMember returns the member's payments by exact case-insensitive
// email match.
func (r *Registry) PaymentsForMember(email string) *table.Table {
	return r.rowsByEmail(classify.RolePayments, email)
}

func (r *Registry) rowsByEmail(role classify.Role, email string) *table.Table {
	t, ok := r.Dataset(role)
	if !ok {
		return nil
	}
	idx := table.Resolve(t.Columns, "email")
	if idx < 0 {
		return nil
	}
	return t.Filter(func(row []string) bool {
		return idx < len(row) && strings.EqualFold(row[idx], email)
	})
}

// orderDateColumn resolves the date column for order queries: prefer a column
// containing both "date" and "created", else the first containing "date".
func orderDateColumn(columns []string) int {
	if idx := table.Resolve(columns, "date", "created"); idx >= 0 {
		return idx
	}
	return table.Resolve(columns, "date")
}

// OrdersInRange returns orders filtered by date. A rolling lastNDays window
// (when > 0) is anchored to the maximum date found in the data, since exports
// are static snapshots, unless the registry was built with AnchorWallClock.
// Explicit start/end bounds may be one- or two-sided. With no date column the
// full dataset is returned; rows whose date fails parsing are excluded from
// any filtered result.
func (r *Registry) OrdersInRange(start, end *time.Time, lastNDays int) *table.Table {
	t, ok := r.Dataset(classify.RoleOrders)
	if !ok {
		return nil
	}
	idx := orderDateColumn(t.Columns)
	if idx < 0 {
		return t.Copy()
	}

	if lastNDays > 0 {
		anchor := r.windowAnchor(t, idx)
		if anchor.IsZero() {
			return table.New(t.Source, t.Columns)
		}
		from := anchor.AddDate(0, 0, -lastNDays)
		return t.Filter(func(row []string) bool {
			ts, ok := table.ParseTime(cell(row, idx))
			return ok && !ts.Before(from)
		})
	}

	if start == nil && end == nil {
		return t.Copy()
	}
	return t.Filter(func(row []string) bool {
		ts, ok := table.ParseTime(cell(row, idx))
		if !ok {
			return false
		}
		if start != nil && ts.Before(*start) {
			return false
		}
		if end != nil && ts.After(*end) {
			return false
		}
		return true
	})
}

// windowAnchor returns the reference time for a rolling window.
func (r *Registry) windowAnchor(t *table.Table, dateIdx int) time.Time {
	if r.anchor == AnchorWallClock {
		return r.now()
	}
	var max time.Time
	for _, row := range t.Rows {
		if ts, ok := table.ParseTime(cell(row, dateIdx)); ok && ts.After(max) {
			max = ts
		}
	}
	return max
}

// OrdersInMonth returns orders whose date falls in the given month, across
// all years unless year is non-zero. Returns nil when no order date column
// resolves.
func (r *Registry) OrdersInMonth(month time.Month, year int) *table.Table {
	t, ok := r.Dataset(classify.RoleOrders)
	if !ok {
		return nil
	}
	idx := orderDateColumn(t.Columns)
	if idx < 0 {
		return nil
	}
	return t.Filter(func(row []string) bool {
		ts, ok := table.ParseTime(cell(row, idx))
		if !ok || ts.Month() != month {
			return false
		}
		return year == 0 || ts.Year() == year
	})
}

// MemberSpend is one row of the top-member ranking.
type MemberSpend struct {
	Email      string
	TotalSpent float64
	OrderCount int
}

// TopMembersBySpend ranks members by summed paid amount over the orders
// dataset, grouped by email. Only rows with a parseable amount contribute.
// The sort is stable descending by total, so equal totals keep
// first-appearance order. Returns nil when the email or amount-paid column
// cannot be resolved.
func (r *Registry) TopMembersBySpend(limit int) []MemberSpend {
	t, ok := r.Dataset(classify.RoleOrders)
	if !ok {
		return nil
	}
	emailIdx := table.Resolve(t.Columns, "email")
	amountIdx := table.Resolve(t.Columns, "amount", "paid")
	if emailIdx < 0 || amountIdx < 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	byEmail := make(map[string]int)
	var ranking []MemberSpend
	for _, row := range t.Rows {
		amount, ok := table.ParseNumber(cell(row, amountIdx))
		if !ok {
			continue
		}
		email := cell(row, emailIdx)
		i, seen := byEmail[email]
		if !seen {
			i = len(ranking)
			byEmail[email] = i
			ranking = append(ranking, MemberSpend{Email: email})
		}
		ranking[i].TotalSpent += amount
		ranking[i].OrderCount++
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalSpent > ranking[j].TotalSpent
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
