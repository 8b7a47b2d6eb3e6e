package tt

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// testT implements the T interface and is used to verify the Test function's
// interaction with T.
type testT []string

func (t *testT) Helper() {}

func (t *testT) Errorf(format string, args ...any) {
	*t = append(*t, fmt.Sprintf(format, args...))
}

// Simple functions to test.

func add(x, y int) int {
	return x + y
}

func addsub(x int, y int) (int, int) {
	return x + y, x - y
}

func failIfNegative(x int) error {
	if x < 0 {
		return errors.New("negative value")
	}
	return nil
}

func TestTTPass(t *testing.T) {
	var testT testT
	Test(&testT, addsub,
		Args(1, 10).Rets(11, -9),
		It("returns zeros for zeros").Args(0, 0).Rets(0, 0),
	)
	if len(testT) > 0 {
		t.Errorf("Test errors when test should pass: %v", testT)
	}
}

func TestTTFailOneReturn(t *testing.T) {
	var testT testT
	Test(&testT, add, Args(1, 10).Rets(12))
	assertOneError(t, testT, "add(1, 10) returns (-want +got):\n")
}

func TestTTFailWithDescription(t *testing.T) {
	var testT testT
	Test(&testT, addsub, It("adds and subtracts").Args(1, 10).Rets(11, -90))
	assertOneError(t, testT, "adds and subtracts: addsub(1, 10) returns (-want +got):\n")
}

func TestTTMatchers(t *testing.T) {
	var testT testT
	Test(&testT, failIfNegative,
		Args(-1).Rets(ErrorWithMessage("negative")),
		Args(1).Rets(Any),
		Args(1).Rets(nil),
	)
	if len(testT) > 0 {
		t.Errorf("Test errors when test should pass: %v", testT)
	}
}

func assertOneError(t *testing.T, testT testT, wantPrefix string) {
	t.Helper()
	switch len(testT) {
	case 0:
		t.Errorf("Test didn't error when it should")
	case 1:
		if !strings.HasPrefix(testT[0], wantPrefix) {
			t.Errorf("Test wrote message %q, want prefix %q", testT[0], wantPrefix)
		}
	default:
		t.Errorf("Test wrote too many error messages")
	}
}
