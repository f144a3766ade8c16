package utils

import "testing"

func TestSafeCall(t *testing.T) {
	if !SafeCall("Test", "nil callback", nil) {
		t.Error("nil callback should be reported as ok")
	}

	called := false
	if !SafeCall("Test", "normal callback", func() { called = true }) {
		t.Error("normal callback should be reported as ok")
	}
	if !called {
		t.Error("callback was not invoked")
	}

	if SafeCall("Test", "panicking callback", func() { panic("scene script bug") }) {
		t.Error("panicking callback should be reported as not ok")
	}
}
