package accounts

import (
	"context"
	"testing"

	"costwise-hq/atlas/pkg/costs"
)

func TestStaticDirectoryFiltersAndSorts(t *testing.T) {
	dir := NewStaticDirectory([]costs.AccountRef{
		{Provider: costs.ProviderAWS, AccountID: "222", AccountName: "Dev", Active: true},
		{Provider: costs.ProviderAWS, AccountID: "111", AccountName: "Prod", Active: true},
		{Provider: costs.ProviderAWS, AccountID: "333", AccountName: "Legacy", Active: false},
		{Provider: costs.ProviderGCP, AccountID: "proj-1", AccountName: "Analytics", Active: true},
	})
	ctx := context.Background()

	aws, err := dir.ListActiveAccounts(ctx, costs.ProviderAWS)
	if err != nil {
		t.Fatalf("ListActiveAccounts failed: %v", err)
	}
	if len(aws) != 2 {
		t.Fatalf("got %d AWS accounts, want 2 (inactive excluded)", len(aws))
	}
	if aws[0].AccountID != "111" || aws[1].AccountID != "222" {
		t.Errorf("accounts not sorted by id: got [%s %s]", aws[0].AccountID, aws[1].AccountID)
	}

	azure, err := dir.ListActiveAccounts(ctx, costs.ProviderAzure)
	if err != nil {
		t.Fatalf("ListActiveAccounts failed: %v", err)
	}
	if azure == nil || len(azure) != 0 {
		t.Errorf("provider with no accounts should return empty slice, got %v", azure)
	}
}

func TestStaticDirectoryReplace(t *testing.T) {
	dir := NewStaticDirectory([]costs.AccountRef{
		{Provider: costs.ProviderNCP, AccountID: "n1", Active: true},
	})

	dir.Replace([]costs.AccountRef{
		{Provider: costs.ProviderNCP, AccountID: "n2", Active: true},
	})

	got, err := dir.ListActiveAccounts(context.Background(), costs.ProviderNCP)
	if err != nil {
		t.Fatalf("ListActiveAccounts failed: %v", err)
	}
	if len(got) != 1 || got[0].AccountID != "n2" {
		t.Errorf("Replace did not swap contents: got %v", got)
	}
}
