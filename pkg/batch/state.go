package batch

// Status はバッチの状態です。
// Idle → Running → {Paused ⇄ Running} → Completed と遷移します。
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText はレポート出力用に状態名を返します。
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot は、観測者向けの BatchState の読み取り専用コピーです。
type Snapshot struct {
	RunID     string `yaml:"run_id" json:"run_id"`
	Status    Status `yaml:"status" json:"status"`
	Cursor    int    `yaml:"cursor" json:"cursor"`
	Total     int    `yaml:"total" json:"total"`
	Processed int    `yaml:"processed" json:"processed"`
	Rejected  int    `yaml:"rejected" json:"rejected"`
}

// Stats は、処理件数と除外件数の集計です。
type Stats struct {
	Processed int `yaml:"processed" json:"processed"`
	Ignored   int `yaml:"ignored" json:"ignored"`
	Total     int `yaml:"total" json:"total"`
}
