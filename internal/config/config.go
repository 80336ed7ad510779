// Package config holds the simulator's configuration surface,
// replacing the Python reference's module-level mutable settings with
// one explicit value threaded through World and Dispatcher
// constructors (spec.md §9 "Global settings").
package config

import "time"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Courier    CourierConfig    `mapstructure:"courier"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Demand     DemandConfig     `mapstructure:"demand"`
	Routing    RoutingConfig    `mapstructure:"routing"`
	DataSource DataSourceConfig `mapstructure:"data_source"`
	Trace      TraceConfig      `mapstructure:"trace"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Policies   PoliciesConfig   `mapstructure:"policies"`
}

// ServerConfig governs the live-observability HTTP endpoint
// (internal/observability), not a control-plane API — the simulator
// has no externally triggered RPC surface (see SPEC_FULL.md §9/DESIGN.md
// for why the teacher's gRPC stack was dropped).
type ServerConfig struct {
	MetricsPort int `mapstructure:"metrics_port"`
}

// SimulationConfig mirrors spec.md §6's SIMULATE_FROM / WARM_UP_TIME /
// CREATE_USERS_* / CREATE_COURIERS_* keys. Times are simulated seconds
// since midnight of the simulated day.
type SimulationConfig struct {
	Instance            int64 `mapstructure:"instance"`
	SimulateFrom        int64 `mapstructure:"simulate_from"`
	SimulateUntil       int64 `mapstructure:"simulate_until"`
	WarmUpTime          int64 `mapstructure:"warm_up_time"`
	CreateUsersFrom     int64 `mapstructure:"create_users_from"`
	CreateUsersUntil    int64 `mapstructure:"create_users_until"`
	CreateCouriersFrom  int64 `mapstructure:"create_couriers_from"`
	CreateCouriersUntil int64 `mapstructure:"create_couriers_until"`
	RandomSeed          int64 `mapstructure:"random_seed"`
}

type CourierConfig struct {
	WaitToMove         int64   `mapstructure:"wait_to_move"`
	MinAcceptanceRate  float64 `mapstructure:"min_acceptance_rate"`
	EarningsPerOrder   float64 `mapstructure:"earnings_per_order"`
	EarningsPerHour    float64 `mapstructure:"earnings_per_hour"`
	AcceptancePolicy   string  `mapstructure:"acceptance_policy"`
	MovementPolicy     string  `mapstructure:"movement_policy"`
	MovementEvalPolicy string  `mapstructure:"movement_evaluation_policy"`
}

type DispatcherConfig struct {
	ProspectsMaxDistance          float64 `mapstructure:"prospects_max_distance"`
	BufferingIntervalSeconds      int64   `mapstructure:"buffering_interval_seconds"`
	PrepositioningIntervalSeconds int64   `mapstructure:"prepositioning_interval_seconds"`
	StrictInvariants              bool    `mapstructure:"strict_invariants"`
	BufferingPolicy               string  `mapstructure:"buffering_policy"`
	MatchingPolicy                string  `mapstructure:"matching_policy"`
	CancellationPolicy            string  `mapstructure:"cancellation_policy"`
	PrepositioningPolicy          string  `mapstructure:"prepositioning_policy"`
	PrepositioningEvalPolicy      string  `mapstructure:"prepositioning_evaluation_policy"`
	DemandManagementPolicy        string  `mapstructure:"demand_management_policy"`
}

type DemandConfig struct {
	DensityThreshold float64 `mapstructure:"density_threshold"`
	LimitRadius      float64 `mapstructure:"limit_radius"`
	SubstitutionProb float64 `mapstructure:"substitution_prob"`
}

type RoutingConfig struct {
	Kind           string        `mapstructure:"kind"` // "osrm" or "straight_line"
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

type DataSourceConfig struct {
	Kind string `mapstructure:"kind"` // "postgres" or "fixture"
	DSN  string `mapstructure:"dsn"`
}

type TraceConfig struct {
	Path       string `mapstructure:"path"`
	MetricsCSV string `mapstructure:"metrics_csv"`
}

type TelegramConfig struct {
	Token   string `mapstructure:"token"`
	ChatID  int64  `mapstructure:"chat_id"`
	Enabled bool   `mapstructure:"enabled"`
}

// PoliciesConfig holds the user-side policy selectors not already
// covered above.
type PoliciesConfig struct {
	UserCancellationPolicy string `mapstructure:"user_cancellation_policy"`
	UserPatienceSeconds    int64  `mapstructure:"user_patience_seconds"`
}

// Default returns the configuration used when no config file is
// supplied, tuned for the S1-S6 scenarios in spec.md §8.
func Default() *Config {
	return &Config{
		Server: ServerConfig{MetricsPort: 9090},
		Simulation: SimulationConfig{
			SimulateFrom:        0,
			SimulateUntil:       86400,
			WarmUpTime:          1800,
			CreateUsersFrom:     0,
			CreateUsersUntil:    86400,
			CreateCouriersFrom:  0,
			CreateCouriersUntil: 86400,
			RandomSeed:          42,
		},
		Courier: CourierConfig{
			WaitToMove:         60,
			MinAcceptanceRate:  0.5,
			EarningsPerOrder:   2.5,
			EarningsPerHour:    10,
			AcceptancePolicy:   "uniform",
			MovementPolicy:     "osrm",
			MovementEvalPolicy: "still",
		},
		Dispatcher: DispatcherConfig{
			ProspectsMaxDistance:          3000,
			BufferingIntervalSeconds:      30,
			PrepositioningIntervalSeconds: 120,
			StrictInvariants:              true,
			BufferingPolicy:               "periodic",
			MatchingPolicy:                "greedy",
			CancellationPolicy:            "immediate",
			PrepositioningPolicy:          "none",
			PrepositioningEvalPolicy:      "periodic",
			DemandManagementPolicy:        "no_demand_management",
		},
		Demand: DemandConfig{
			DensityThreshold: 10,
			LimitRadius:      5000,
			SubstitutionProb: 0,
		},
		Routing: RoutingConfig{
			Kind:           "straight_line",
			BaseURL:        "http://127.0.0.1:5000",
			RequestTimeout: 5 * time.Second,
			RateLimitRPS:   20,
			RateLimitBurst: 10,
			MaxRetries:     3,
		},
		DataSource: DataSourceConfig{
			Kind: "fixture",
		},
		Trace: TraceConfig{
			Path:       "trace.jsonl",
			MetricsCSV: "metrics",
		},
		Policies: PoliciesConfig{
			UserCancellationPolicy: "patience",
			UserPatienceSeconds:    600,
		},
	}
}
