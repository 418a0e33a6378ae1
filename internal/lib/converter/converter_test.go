package converter

import "testing"

func TestConvertAmountZECToZatoshi(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		want   int64
	}{
		{
			name:   "Success",
			amount: 1.23,
			want:   123_000_000,
		},
		{
			name:   "TenthOfZEC",
			amount: 0.1,
			want:   10_000_000,
		},
		{
			name:   "SingleZatoshi",
			amount: 0.00000001,
			want:   1,
		},
		{
			name:   "Zero",
			amount: 0,
			want:   0,
		},
		{
			name:   "Negative",
			amount: -1.23,
			want:   -123_000_000,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ConvertAmountZECToZatoshi(tc.amount)
			if got != tc.want {
				t.Errorf("unexpected result, want: %d, got: %d", tc.want, got)
			}
		})
	}
}

func TestConvertAmountZatoshiToZEC(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		want   float64
	}{
		{
			name:   "Success",
			amount: 123_000_000,
			want:   1.23,
		},
		{
			name:   "Zero",
			amount: 0,
			want:   0,
		},
		{
			name:   "Negative",
			amount: -50_000_000,
			want:   -0.5,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ConvertAmountZatoshiToZEC(tc.amount)
			if got != tc.want {
				t.Errorf("unexpected result, want: %f, got: %f", tc.want, got)
			}
		})
	}
}

func TestConvertAmountZatoshiToString(t *testing.T) {
	got := ConvertAmountZatoshiToString(10_000_000)
	if got != "0.1" {
		t.Errorf("unexpected result, want: %q, got: %q", "0.1", got)
	}
}
