package device

import "testing"

func withProbe(t *testing.T, present bool) {
	t.Helper()
	prev := probe
	probe = func() bool { return present }
	t.Cleanup(func() { probe = prev })
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", Auto, false},
		{"  CUDA ", CUDA, false},
		{"cpu", CPU, false},
		{"auto", Auto, false},
		{"metal", "", true},
	}

	for _, tc := range tests {
		got, err := Normalize(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("Normalize(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSelectUsesReportedDevice(t *testing.T) {
	withProbe(t, false)

	got, err := Select(Auto, "cuda:0")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got != CUDA {
		t.Fatalf("Select() = %q, want %q", got, CUDA)
	}

	got, err = Select(CPU, "CPU")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got != CPU {
		t.Fatalf("Select() = %q, want %q", got, CPU)
	}
}

func TestSelectRejectsMismatch(t *testing.T) {
	withProbe(t, true)

	if _, err := Select(CUDA, "cpu"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestSelectFallsBackToProbe(t *testing.T) {
	t.Setenv("CUDA_VISIBLE_DEVICES", "0")

	withProbe(t, true)
	if got, _ := Select(Auto, ""); got != CUDA {
		t.Fatalf("Select(auto) with CUDA present = %q, want %q", got, CUDA)
	}

	withProbe(t, false)
	if got, _ := Select(Auto, ""); got != CPU {
		t.Fatalf("Select(auto) without CUDA = %q, want %q", got, CPU)
	}
	if _, err := Select(CUDA, ""); err == nil {
		t.Fatal("expected error when cuda is requested but absent")
	}
}

func TestCUDAVisibleDevicesHidesCUDA(t *testing.T) {
	withProbe(t, true)
	t.Setenv("CUDA_VISIBLE_DEVICES", "-1")

	if CUDAAvailable() {
		t.Fatal("expected CUDA to be hidden")
	}
	if got := Available(); got != CPU {
		t.Fatalf("Available() = %q, want %q", got, CPU)
	}
}
