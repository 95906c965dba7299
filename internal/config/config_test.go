package config

import "testing"

func TestIsDatabricks(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"databricks", true},
		{"databricks://myprofile", true},
		{"https://myworkspace.cloud.databricks.com", true},
		{"https://adb-123.azuredatabricks.net", true},
		{"https://workspace.gcp.databricks.com/path", true},
		{"http://localhost:5000", false},
		{"https://mlflow.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			c := &Config{TrackingURI: tt.uri}
			if got := c.IsDatabricks(); got != tt.want {
				t.Errorf("IsDatabricks(%q) = %v, want %v", tt.uri, got, tt.want)
			}
		})
	}
}

func TestGetDatabricksProfile(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"databricks://myprofile", "myprofile"},
		{"databricks://myprofile/extra", "myprofile"},
		{"databricks", ""},
		{"https://workspace.cloud.databricks.com", ""},
	}

	for _, tt := range tests {
		c := &Config{TrackingURI: tt.uri}
		if got := c.GetDatabricksProfile(); got != tt.want {
			t.Errorf("GetDatabricksProfile(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	c := &Config{TrackingURI: "http://localhost:5000", Concurrency: 1}
	if err := c.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	c = &Config{Concurrency: 1}
	if err := c.Validate(); err == nil {
		t.Error("expected error for empty tracking URI")
	}

	c = &Config{TrackingURI: "http://localhost:5000", Concurrency: 0}
	if err := c.Validate(); err == nil {
		t.Error("expected error for zero concurrency")
	}
}
