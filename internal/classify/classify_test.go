package classify

import "testing"

// TestDetect walks the rule cascade top to bottom. Filename rules win over
// column signatures; the items rule must beat the orders rule on combined
// "orders_items" exports.
func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		columns  []string
		want     Role
	}{
		{
			"contact filename",
			"contact data.csv",
			nil,
			RoleMemberData,
		},
		{
			"data filename",
			"club data export.xlsx",
			nil,
			RoleMemberData,
		},
		{
			"order filename",
			"orders 2024.csv",
			[]string{"anything"},
			RoleOrders,
		},
		{
			"payment filename",
			"stripe payments.csv",
			nil,
			RolePayments,
		},
		{
			"item filename",
			"items purchased.xls",
			nil,
			RoleItems,
		},
		{
			"orders_items lands on items",
			"orders_items.csv",
			[]string{"Order Number", "Item", "Qty"},
			RoleItems,
		},
		{
			"member columns",
			"export1.csv",
			[]string{"Member ID", "Full Name", "Phone"},
			RoleMemberData,
		},
		{
			"order columns",
			"export2.csv",
			[]string{"Order Number", "Payment Status", "Total"},
			RoleOrders,
		},
		{
			"payment columns",
			"export3.csv",
			[]string{"Payment ID", "Amount", "Method"},
			RolePayments,
		},
		{
			"item columns",
			"export4.csv",
			[]string{"Order Ref", "Item Name", "Quantity"},
			RoleItems,
		},
		{
			"fallback from filename stem",
			"Misc Export.csv",
			[]string{"ColA", "ColB"},
			Role("misc_export"),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Detect(tt.filename, tt.columns); got != tt.want {
				t.Fatalf("Detect(%q, %v) = %q, want %q", tt.filename, tt.columns, got, tt.want)
			}
		})
	}
}

func TestFallbackRole(t *testing.T) {
	t.Parallel()

	if got := fallbackRole("Some Random File.xlsx"); got != Role("some_random_file") {
		t.Fatalf("fallbackRole = %q, want some_random_file", got)
	}
}
