package internaldefs

import (
	authstate "github.com/emberlock/authstate"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   authstate.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   authstate.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter both exporters publish, in a stable order.
var CounterDefs = []CounterDef{
	{ID: authstate.MetricLoginSuccess, Name: "authstate_login_success_total", Help: "Successful login attempts."},
	{ID: authstate.MetricLoginFailure, Name: "authstate_login_failure_total", Help: "Login attempts rejected for bad credentials."},
	{ID: authstate.MetricLoginUnavailable, Name: "authstate_login_unavailable_total", Help: "Login attempts failed on store errors."},
	{ID: authstate.MetricRegisterSuccess, Name: "authstate_register_success_total", Help: "Successful registrations."},
	{ID: authstate.MetricRegisterDuplicate, Name: "authstate_register_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: authstate.MetricRegisterFailure, Name: "authstate_register_failure_total", Help: "Registrations failed on store errors."},
	{ID: authstate.MetricLogout, Name: "authstate_logout_total", Help: "Logout operations."},
	{ID: authstate.MetricSessionRestored, Name: "authstate_session_restored_total", Help: "Startup restores that found a persisted session."},
	{ID: authstate.MetricRestoreEmpty, Name: "authstate_session_restore_empty_total", Help: "Startup restores that found no session."},
	{ID: authstate.MetricCorruptSessionRecovered, Name: "authstate_corrupt_session_recovered_total", Help: "Discarded unparsable session payloads."},
	{ID: authstate.MetricPasswordResetRequest, Name: "authstate_password_reset_request_total", Help: "Password reset requests."},
	{ID: authstate.MetricPasswordResetConfirmSuccess, Name: "authstate_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: authstate.MetricPasswordResetConfirmFailure, Name: "authstate_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
	{ID: authstate.MetricPasswordResetAttemptsExceeded, Name: "authstate_password_reset_attempts_exceeded_total", Help: "Password reset challenges invalidated due to attempt cap."},
}

// HistogramDefs lists every histogram both exporters publish.
var HistogramDefs = []HistogramDef{
	{ID: authstate.MetricLoginLatency, Name: "authstate_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with OTel-safe name suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
