package document

import (
	_ "embed"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

//go:embed labels.yaml
var defaultLabelsRaw []byte

// Labels is the text catalogue of the report layout
type Labels struct {
	Title         string `yaml:"title"`
	Subtitle      string `yaml:"subtitle"`
	Missing       string `yaml:"missing"`
	NoAppointment string `yaml:"no_appointment"`

	Meta struct {
		Patient     string `yaml:"patient"`
		Appointment string `yaml:"appointment"`
		Generated   string `yaml:"generated"`
	} `yaml:"meta"`

	Headings struct {
		Patient   string `yaml:"patient"`
		Sensors   string `yaml:"sensors"`
		Narrative string `yaml:"narrative"`
	} `yaml:"headings"`

	Facts struct {
		PatientID        string `yaml:"patient_id"`
		FullName         string `yaml:"full_name"`
		Email            string `yaml:"email"`
		Phone            string `yaml:"phone"`
		EmergencyContact string `yaml:"emergency_contact"`
		Glove            string `yaml:"glove"`
		Source           string `yaml:"source"`
	} `yaml:"facts"`

	Source struct {
		Model    string `yaml:"model"`
		Fallback string `yaml:"fallback"`
	} `yaml:"source"`

	Table struct {
		Stream      string `yaml:"stream"`
		Measurement string `yaml:"measurement"`
		Description string `yaml:"description"`
	} `yaml:"table"`

	Streams struct {
		PPG  StreamLabel `yaml:"ppg"`
		MPU  StreamLabel `yaml:"mpu"`
		Flex StreamLabel `yaml:"flex"`
		FSR  StreamLabel `yaml:"fsr"`
	} `yaml:"streams"`
}

// StreamLabel describes one row of the sensor table
type StreamLabel struct {
	Name        string `yaml:"name"`
	Unit        string `yaml:"unit"`
	Description string `yaml:"description"`
}

// DefaultLabels returns the embedded English catalogue
func DefaultLabels() *Labels {
	labels, err := parseLabels(defaultLabelsRaw)
	if err != nil {
		panic("embedded labels.yaml is broken: " + err.Error())
	}
	return labels
}

// LoadLabels reads a catalogue file. Keys missing from the file keep their default value.
func LoadLabels(path string) (*Labels, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read labels file", goerr.V("path", path))
	}

	labels := DefaultLabels()
	if err := yaml.Unmarshal(raw, labels); err != nil {
		return nil, goerr.Wrap(err, "failed to parse labels file", goerr.V("path", path))
	}
	if labels.Missing == "" {
		return nil, goerr.New("missing marker must not be empty", goerr.V("path", path))
	}

	return labels, nil
}

func parseLabels(raw []byte) (*Labels, error) {
	var labels Labels
	if err := yaml.Unmarshal(raw, &labels); err != nil {
		return nil, goerr.Wrap(err, "failed to parse labels")
	}
	return &labels, nil
}
