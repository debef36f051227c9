package access

import (
	"errors"
	"testing"
)

func TestAuthorizeTransfer(t *testing.T) {
	var p Policy
	if err := p.AuthorizeTransfer("user-1", "user-1"); err != nil {
		t.Fatalf("owner must be authorized: %v", err)
	}
	if err := p.AuthorizeTransfer("user-1", "user-2"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestCanView(t *testing.T) {
	var p Policy
	if !p.CanView("user-1", "user-1") {
		t.Fatal("owner must see own resource")
	}
	// A transaction is visible to either side.
	if !p.CanView("user-2", "user-1", "user-2") {
		t.Fatal("counterparty must see shared resource")
	}
	if p.CanView("user-3", "user-1", "user-2") {
		t.Fatal("third party must not see resource")
	}
	if p.CanView("user-1") {
		t.Fatal("no owners means no visibility")
	}
}
