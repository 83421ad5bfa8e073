package cmd

import "testing"

func TestReconcileDefaultsToJSON(t *testing.T) {
	flag := reconcileCmd.Flags().Lookup("output-format")
	if flag == nil {
		t.Fatal("output-format flag not registered")
	}
	if flag.DefValue != "json" {
		t.Errorf("output-format default = %q, want json", flag.DefValue)
	}
}
