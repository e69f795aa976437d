package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

const (
	StoragePostgres = "postgres"
	StorageSQL      = "sql"
	StorageEtcd     = "etcd"
	StorageMem      = "mem"

	DefaultHttpApiPort     = "8432"
	DefaultGrpcApiPort     = "8433"
	DefaultStorageMaxConns = 10
	DefaultStorageTimeout  = 5 * time.Second
	DefaultMaxRetries      = 150
	DefaultRetryBackoff    = time.Millisecond
	DefaultRegistryStripes = 16
	DefaultMaxBatch        = 10000
)

var cfgSequencer Sequencer

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// TableStructure names the counter table and its columns.
type TableStructure struct {
	Table    string `json:"table" toml:"table" yaml:"table"`
	Name     string `json:"name" toml:"name" yaml:"name"`
	Value    string `json:"value" toml:"value" yaml:"value"`
	Step     string `json:"step" toml:"step" yaml:"step"`
	Modified string `json:"modified" toml:"modified" yaml:"modified"`
}

type Sequencer struct {
	LogLevel                string `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFileName             string `json:"log_filename" toml:"log_filename" yaml:"log_filename"`
	PrettyLogging           bool   `json:"pretty_logging" toml:"pretty_logging" yaml:"pretty_logging"`
	LogMinDurationStatement string `json:"log_min_duration_statement" toml:"log_min_duration_statement" yaml:"log_min_duration_statement"`

	Host        string `json:"host" toml:"host" yaml:"host"`
	HttpApiPort string `json:"http_api_port" toml:"http_api_port" yaml:"http_api_port"`
	GrpcApiPort string `json:"grpc_api_port" toml:"grpc_api_port" yaml:"grpc_api_port"`
	ReusePort   bool   `json:"reuse_port" toml:"reuse_port" yaml:"reuse_port"`

	StorageType       string         `json:"storage_type" toml:"storage_type" yaml:"storage_type"`
	StorageConnString string         `json:"storage_connstring" toml:"storage_connstring" yaml:"storage_connstring"`
	StorageDriver     string         `json:"storage_driver" toml:"storage_driver" yaml:"storage_driver"`
	StorageMaxConns   int32          `json:"storage_max_conns" toml:"storage_max_conns" yaml:"storage_max_conns"`
	StorageTimeout    string         `json:"storage_timeout" toml:"storage_timeout" yaml:"storage_timeout"`
	QdbAddr           string         `json:"qdb_addr" toml:"qdb_addr" yaml:"qdb_addr"`
	MemBackupPath     string         `json:"mem_backup_path" toml:"mem_backup_path" yaml:"mem_backup_path"`
	Structure         TableStructure `json:"structure" toml:"structure" yaml:"structure"`

	MaxRetries      int    `json:"max_retries" toml:"max_retries" yaml:"max_retries"`
	RetryBackoff    string `json:"retry_backoff" toml:"retry_backoff" yaml:"retry_backoff"`
	RegistryStripes int    `json:"registry_stripes" toml:"registry_stripes" yaml:"registry_stripes"`
	MaxBatch        int    `json:"max_batch" toml:"max_batch" yaml:"max_batch"`

	TimeQuantiles []string `json:"time_quantiles" toml:"time_quantiles" yaml:"time_quantiles"`
}

func initSequencerConfig(file *os.File, filepath string) error {
	if strings.HasSuffix(filepath, ".toml") {
		_, err := toml.NewDecoder(file).Decode(&cfgSequencer)
		return err
	}
	if strings.HasSuffix(filepath, ".yaml") {
		return yaml.NewDecoder(file).Decode(&cfgSequencer)
	}
	if strings.HasSuffix(filepath, ".json") {
		return json.NewDecoder(file).Decode(&cfgSequencer)
	}
	return fmt.Errorf("unknown config format type: %s. Use .toml, .yaml or .json suffix in filename", filepath)
}

func LoadSequencerCfg(cfgPath string) error {
	file, err := os.Open(cfgPath)
	if err != nil {
		return err
	}
	defer file.Close()

	cfgSequencer = Sequencer{}
	if err := initSequencerConfig(file, cfgPath); err != nil {
		return err
	}
	if err := cfgSequencer.Validate(); err != nil {
		return err
	}

	configBytes, err := json.MarshalIndent(cfgSequencer.redacted(), "", "  ")
	if err != nil {
		return err
	}

	log.Println("Running config:", string(configBytes))
	return nil
}

func SequencerConfig() *Sequencer {
	return &cfgSequencer
}

// Validate fills in defaults and rejects values the sequencer cannot run with.
func (s *Sequencer) Validate() error {
	if s.HttpApiPort == "" {
		s.HttpApiPort = DefaultHttpApiPort
	}
	if s.GrpcApiPort == "" {
		s.GrpcApiPort = DefaultGrpcApiPort
	}
	if s.StorageType == "" {
		s.StorageType = StoragePostgres
	}
	if s.StorageMaxConns <= 0 {
		s.StorageMaxConns = DefaultStorageMaxConns
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = DefaultMaxRetries
	}
	if s.RegistryStripes <= 0 {
		s.RegistryStripes = DefaultRegistryStripes
	}
	if s.MaxBatch == 0 {
		s.MaxBatch = DefaultMaxBatch
	}
	s.Structure.setDefaults()

	switch s.StorageType {
	case StoragePostgres:
	case StorageSQL:
		switch s.StorageDriver {
		case "":
			s.StorageDriver = "postgres"
		case "postgres", "mysql":
		default:
			return fmt.Errorf("unsupported storage driver %q, use postgres or mysql", s.StorageDriver)
		}
	case StorageEtcd:
		if s.QdbAddr == "" {
			return fmt.Errorf("qdb_addr is required for %s storage", StorageEtcd)
		}
	case StorageMem:
	default:
		return fmt.Errorf("storage type %q is invalid", s.StorageType)
	}

	if s.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be positive, got %d", s.MaxRetries)
	}
	if s.MaxBatch < 0 {
		return fmt.Errorf("max_batch must be positive, got %d", s.MaxBatch)
	}
	if _, err := parseDuration(s.StorageTimeout, DefaultStorageTimeout); err != nil {
		return fmt.Errorf("invalid storage_timeout: %w", err)
	}
	if _, err := parseDuration(s.RetryBackoff, DefaultRetryBackoff); err != nil {
		return fmt.Errorf("invalid retry_backoff: %w", err)
	}
	if _, err := parseDuration(s.LogMinDurationStatement, -1); err != nil {
		return fmt.Errorf("invalid log_min_duration_statement: %w", err)
	}
	return s.Structure.validate()
}

// MaxAttempts is the number of reads of the counter row a single refill
// may make: the first one plus max_retries retries.
func (s *Sequencer) MaxAttempts() int {
	return s.MaxRetries + 1
}

func (s *Sequencer) StorageTimeoutDuration() time.Duration {
	d, _ := parseDuration(s.StorageTimeout, DefaultStorageTimeout)
	return d
}

func (s *Sequencer) RetryBackoffDuration() time.Duration {
	d, _ := parseDuration(s.RetryBackoff, DefaultRetryBackoff)
	if d <= 0 {
		return DefaultRetryBackoff
	}
	return d
}

func (s *Sequencer) LogMinDurationStatementDuration() time.Duration {
	d, _ := parseDuration(s.LogMinDurationStatement, -1)
	return d
}

func (s Sequencer) redacted() Sequencer {
	if s.StorageConnString != "" {
		s.StorageConnString = "<hidden>"
	}
	return s
}

func (t *TableStructure) setDefaults() {
	if t.Table == "" {
		t.Table = "sequence"
	}
	if t.Name == "" {
		t.Name = "name"
	}
	if t.Value == "" {
		t.Value = "value"
	}
	if t.Step == "" {
		t.Step = "step"
	}
	if t.Modified == "" {
		t.Modified = "gmt_modified"
	}
}

func (t *TableStructure) validate() error {
	for _, ident := range []string{t.Table, t.Name, t.Value, t.Step, t.Modified} {
		if !identifierRe.MatchString(ident) {
			return fmt.Errorf("invalid identifier %q in table structure", ident)
		}
	}
	return nil
}

func parseDuration(val string, def time.Duration) (time.Duration, error) {
	if val == "" {
		return def, nil
	}
	return time.ParseDuration(val)
}
