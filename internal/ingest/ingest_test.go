package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"datamart/internal/classify"
	"datamart/internal/config"
)

func writeData(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// seedFolder lays out a small but complete export set: a roster, two order
// files that merge, and a payments file.
func seedFolder(t *testing.T, dir string) {
	t.Helper()

	writeData(t, dir, "members.csv",
		"Member ID,Full Name,Email,Phone\n"+
			"1,Ann One,ann@x.com,111\n"+
			"2,Ben Two,ben@x.com,222\n"+
			"3,Cid Three,cid@x.com,333\n"+
			"4,Dee Four,dee@x.com,444\n"+
			"5,Eve Five,eve@x.com,555\n")

	writeData(t, dir, "orders 2024.csv",
		"Order Number,Email,Date Created,Amount Paid,Payment Status\n"+
			"101,ann@x.com,2024-01-05,50,Paid\n"+
			"102,ben@x.com,2024-01-15,20,Pending\n"+
			"103,ann@x.com,2024-02-01,30,Paid\n"+
			"104,cid@x.com,2024-02-10,60,Paid\n")

	writeData(t, dir, "orders.csv",
		"Order Number,Email,Date Created,Amount Paid,Payment Status\n"+
			"105,dee@x.com,2024-03-01,80,Paid\n"+
			"106,eve@x.com,2024-03-05,40,Refunded\n"+
			"107,ann@x.com,2024-03-20,90,Paid\n"+
			"108,ben@x.com,2024-03-28,10,Pending\n")

	writeData(t, dir, "payments.csv",
		"Transaction ID,Email,Amount,Processing Fee Amount\n"+
			"t1,ann@x.com,170.00,5.10\n"+
			"t2,cid@x.com,60.00,1.80\n"+
			"t3,dee@x.com,80.00,2.40\n"+
			"t4,eve@x.com,40.00,1.20\n"+
			"t5,ben@x.com,70.00,2.10\n")
}

func testConfig(t *testing.T, dir string) config.Config {
	t.Helper()
	return config.Config{
		DataFolder:   dir,
		CacheFolder:  filepath.Join(dir, "csv_cache"),
		ManifestPath: filepath.Join(dir, ".last_scan"),
		Anchor:       "data",
	}
}

// TestRunEndToEnd ingests the seeded folder and checks the merged datasets
// and the aggregate summary.
func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedFolder(t, dir)

	reg, err := Run(testConfig(t, dir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reg.Loaded() {
		t.Fatalf("no datasets loaded")
	}

	members, ok := reg.Dataset(classify.RoleMemberData)
	if !ok || members.NumRows() != 5 {
		t.Fatalf("members = %d rows, want 5", members.NumRows())
	}
	orders, ok := reg.Dataset(classify.RoleOrders)
	if !ok || orders.NumRows() != 8 {
		t.Fatalf("orders = %d rows, want 8", orders.NumRows())
	}
	payments, ok := reg.Dataset(classify.RolePayments)
	if !ok || payments.NumRows() != 5 {
		t.Fatalf("payments = %d rows, want 5", payments.NumRows())
	}

	s := reg.Summarize()
	if s.TotalMembers == nil || *s.TotalMembers != 5 {
		t.Fatalf("TotalMembers = %v, want 5", s.TotalMembers)
	}
	if s.TotalOrders == nil || *s.TotalOrders != 8 {
		t.Fatalf("TotalOrders = %v, want 8", s.TotalOrders)
	}
	if s.PaidOrders == nil || *s.PaidOrders != 5 {
		t.Fatalf("PaidOrders = %v, want 5", s.PaidOrders)
	}
	if s.TotalRevenue == nil || *s.TotalRevenue != 420.00 {
		t.Fatalf("TotalRevenue = %v, want 420.00", s.TotalRevenue)
	}

	// The scan manifest must exist after the run.
	if _, err := os.Stat(filepath.Join(dir, ".last_scan")); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}

	// Queries work against the merged orders table.
	if got := reg.OrdersForMember("ann@x.com"); got.NumRows() != 3 {
		t.Fatalf("orders for ann = %d rows, want 3", got.NumRows())
	}
	if got := reg.OrdersInRange(nil, nil, 30); got.NumRows() != 4 {
		t.Fatalf("last 30 days = %d rows, want 4", got.NumRows())
	}
}

// TestRunSkipsBrokenFile: an unconvertible source is logged and skipped, the
// rest of the run is unaffected.
func TestRunSkipsBrokenFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedFolder(t, dir)
	writeData(t, dir, "broken.xlsx", "this is not a spreadsheet")

	reg, err := Run(testConfig(t, dir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(reg.Roles()); got != 3 {
		t.Fatalf("roles = %d, want 3", got)
	}
}

func TestRunEmptyFolder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reg, err := Run(testConfig(t, dir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reg.Loaded() {
		t.Fatalf("empty folder should produce an empty registry")
	}
}

// TestServiceReload: a file dropped into the folder between reloads appears in
// the swapped-in registry; the old snapshot pointer is unchanged.
func TestServiceReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeData(t, dir, "members.csv", "Member ID,Full Name,Email\n1,Ann One,ann@x.com\n")

	svc, err := NewService(testConfig(t, dir))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	old := svc.Registry()
	if got := len(old.Roles()); got != 1 {
		t.Fatalf("initial roles = %d, want 1", got)
	}

	writeData(t, dir, "payments.csv", "Transaction ID,Amount,Method\nt1,10.00,card\n")

	loaded, err := svc.Reload()
	if err != nil || !loaded {
		t.Fatalf("Reload = (%v, %v)", loaded, err)
	}
	if got := len(svc.Registry().Roles()); got != 2 {
		t.Fatalf("roles after reload = %d, want 2", got)
	}
	if got := len(old.Roles()); got != 1 {
		t.Fatalf("old snapshot mutated: roles = %d", got)
	}
}
