package repository

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestRetryableTxError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &mysql.MySQLError{Number: mysqlDeadlock}, true},
		{"lock wait timeout", &mysql.MySQLError{Number: mysqlLockWaitTimeout}, true},
		{"duplicate entry", &mysql.MySQLError{Number: mysqlDuplicateEntry}, false},
		{"plain error", errors.New("boom"), false},
		{"wrapped deadlock", wrap(&mysql.MySQLError{Number: mysqlDeadlock}), true},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := retryableTxError(tc.err); got != tc.want {
				t.Fatalf("retryableTxError = %v, want %v", got, tc.want)
			}
		})
	}
}

func wrap(err error) error {
	return errors.Join(errors.New("commit failed"), err)
}

func TestStartsRoundTrip(t *testing.T) {
	cases := []struct {
		starts []string
		joined string
	}{
		{nil, ""},
		{[]string{"15"}, "15"},
		{[]string{"15", "16"}, "15,16"},
	}
	for _, tc := range cases {
		if got := joinStarts(tc.starts); got != tc.joined {
			t.Errorf("joinStarts(%v) = %q, want %q", tc.starts, got, tc.joined)
		}
		if got := splitStarts(tc.joined); !reflect.DeepEqual(got, tc.starts) {
			t.Errorf("splitStarts(%q) = %v, want %v", tc.joined, got, tc.starts)
		}
	}
}
