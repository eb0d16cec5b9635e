//go:build integration

package integration

import (
	"os"
	"strings"

	"github.com/bizmatters/agent-builder/charter-orchestrator/tests/helpers"
)

// ClusterConfig holds configuration for in-cluster testing
type ClusterConfig struct {
	DatabaseURL string
	LLMAPIURL   string
	IsInCluster bool
	Namespace   string
}

// SetupInClusterEnvironment configures the test environment. LLMAPIURL is
// empty unless a real backend is configured; tests then use a stub.
func SetupInClusterEnvironment() *ClusterConfig {
	return &ClusterConfig{
		DatabaseURL: helpers.BuildDatabaseURL(),
		LLMAPIURL:   os.Getenv("LLM_API_URL"),
		IsInCluster: isRunningInCluster(),
		Namespace:   getNamespace(),
	}
}

// isRunningInCluster detects if we're running inside a Kubernetes cluster
func isRunningInCluster() bool {
	if _, err := os.Stat("/var/run/secrets/kubernetes.io/serviceaccount/token"); err == nil {
		return true
	}
	return os.Getenv("KUBERNETES_SERVICE_HOST") != ""
}

// getNamespace returns the current Kubernetes namespace
func getNamespace() string {
	if data, err := os.ReadFile("/var/run/secrets/kubernetes.io/serviceaccount/namespace"); err == nil {
		return strings.TrimSpace(string(data))
	}
	if ns := os.Getenv("NAMESPACE"); ns != "" {
		return ns
	}
	return "charter-orchestrator"
}
