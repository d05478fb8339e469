package domain

import "context"

// RelaySettingStatus reports whether one relay setting is present without revealing secrets.
type RelaySettingStatus struct {
	Key     string `json:"key"`
	Present bool   `json:"present"`
	Value   string `json:"value,omitempty"`
}

// TransportInfo describes one configured relay transport.
type TransportInfo struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Security string `json:"security"`
}

// ConfigReport summarises the delivery configuration for operators.
type ConfigReport struct {
	MailProvider string               `json:"mailProvider"`
	Configured   bool                 `json:"configured"`
	Settings     []RelaySettingStatus `json:"settings"`
	Transports   []TransportInfo      `json:"transports"`
	MaxAttempts  int                  `json:"maxAttempts"`
}

// TransportCheck is the result of connecting and authenticating against one transport.
type TransportCheck struct {
	TransportInfo
	OK         bool   `json:"ok"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// DiagnosticsUsecase exposes operator-only views of the mail relay and follow-up ledger
type DiagnosticsUsecase interface {
	ConfigReport() ConfigReport
	VerifyRelay(ctx context.Context) ([]TransportCheck, error)
	PendingFollowUps(ctx context.Context, limit int) ([]FollowUp, error)
	ResolveFollowUp(ctx context.Context, id string) error
}

// ChatLink is the deep link opened by the floating chat widget.
type ChatLink struct {
	URL           string `json:"url"`
	RevealAfterMs int64  `json:"revealAfterMs"`
}

// HealthUsecase reports the state of optional backing services.
type HealthUsecase interface {
	Check(ctx context.Context) (components map[string]string, healthy bool)
}
