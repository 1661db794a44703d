package crm

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the fixture loaded into a Memory backend.
type Seed struct {
	Staff     []SeedStaff    `yaml:"staff"`
	Incidents []SeedIncident `yaml:"incidents"`
	Messages  []SeedMessage  `yaml:"messages"`
}

// SeedStaff carries a plaintext password that is hashed on load.
type SeedStaff struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Email        string   `yaml:"email"`
	Password     string   `yaml:"password"`
	Department   string   `yaml:"department"`
	Skillset     []string `yaml:"skillset"`
	Availability string   `yaml:"availability"`
	Role         string   `yaml:"role"`
}

// SeedIncident references staff by id; names and emails are resolved on load.
type SeedIncident struct {
	ID           string    `yaml:"id"`
	Title        string    `yaml:"title"`
	Description  string    `yaml:"description"`
	Category     string    `yaml:"category"`
	Severity     string    `yaml:"severity"`
	Status       string    `yaml:"status"`
	ReporterID   string    `yaml:"reporter_id"`
	AssignedToID string    `yaml:"assigned_to_id"`
	AISummary    string    `yaml:"ai_summary"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// SeedMessage is a chat message attached to a seeded incident.
type SeedMessage struct {
	ID         string    `yaml:"id"`
	IncidentID string    `yaml:"incident_id"`
	Message    string    `yaml:"message"`
	SenderID   string    `yaml:"sender_id"`
	Timestamp  time.Time `yaml:"timestamp"`
	Read       bool      `yaml:"read"`
}

// LoadSeed reads a fixture from path, or the built-in one when path is empty.
func LoadSeed(path string) (*Seed, error) {
	data := defaultSeed
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		data = raw
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML fixture.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}
