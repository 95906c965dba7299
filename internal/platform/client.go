package platform

import (
	"fmt"

	"github.com/databricks/databricks-sdk-go"

	"github.com/mlsweep/sweepctl/internal/config"
)

// Client wraps the workspace SDK client for the tracking server that owns the
// sweep runs and their artifacts.
type Client struct {
	client *databricks.WorkspaceClient
	config *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sdkCfg, err := sdkConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := databricks.NewWorkspaceClient(sdkCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracking client: %w", err)
	}

	return &Client{
		client: client,
		config: cfg,
	}, nil
}

// sdkConfig translates the tracking URI into SDK connection settings.
func sdkConfig(cfg *config.Config) (*databricks.Config, error) {
	if !cfg.IsDatabricks() {
		// Plain MLflow servers ignore authentication, but the SDK insists on
		// a token.
		return &databricks.Config{
			Host:  cfg.TrackingURI,
			Token: "dummy-token-for-regular-mlflow",
		}, nil
	}

	sdkCfg := &databricks.Config{Token: cfg.DatabricksToken}

	switch {
	case cfg.TrackingURI == "databricks":
		// Resolution falls to DATABRICKS_HOST, or the SDK's default profile.
		sdkCfg.Host = cfg.DatabricksHost
	case cfg.GetDatabricksProfile() != "":
		// databricks://{profile}
		sdkCfg.Profile = cfg.GetDatabricksProfile()
	default:
		// Full workspace URL used directly as the tracking URI.
		sdkCfg.Host = cfg.TrackingURI
	}

	if sdkCfg.Host == "" && sdkCfg.Profile == "" {
		return nil, fmt.Errorf("Databricks host or profile is required when using a Databricks tracking server. Set DATABRICKS_HOST, use a full Databricks URL as tracking URI, or specify a profile with databricks://{profile}")
	}

	return sdkCfg, nil
}
