package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestNewRepositories(t *testing.T) {
	if repo := NewUserRepository(nil); repo == nil || repo.db != nil {
		t.Fatal("expected non-nil UserRepository with nil db")
	}
	if repo := NewUsageRepository(nil); repo == nil || repo.db != nil {
		t.Fatal("expected non-nil UsageRepository with nil db")
	}
}

func TestSentinelErrors(t *testing.T) {
	if ErrUserNotFound.Error() != "user not found" {
		t.Fatalf("unexpected error message: %s", ErrUserNotFound.Error())
	}
	if ErrDuplicateEmail.Error() != "email already exists" {
		t.Fatalf("unexpected error message: %s", ErrDuplicateEmail.Error())
	}
}

func TestIsDuplicateEntryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: ErrUserNotFound, want: false},
		{name: "plain text mentioning duplicate", err: errors.New("Duplicate entry 'a' for key 'email'"), want: false},
		{name: "duplicate entry", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, want: true},
		{name: "wrapped duplicate entry", err: fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), want: true},
		{name: "other mysql error", err: &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateEntryError(tt.err); got != tt.want {
				t.Errorf("isDuplicateEntryError() = %v, want %v", got, tt.want)
			}
		})
	}
}
