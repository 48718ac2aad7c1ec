// Package helm drives the helm binary to install, upgrade and uninstall
// hub releases.
//
// helm is invoked as a subprocess with captured output and a bounded
// context. Install and uninstall are idempotent: deploys are
// upgrade-or-install, and uninstalling a release which does not exist
// is success. Retrying an interrupted operation is safe.
package helm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domerr "github.com/hubcluster/hubcluster/pkg/domain/errors"
	xe "github.com/hubcluster/hubcluster/pkg/errors"
)

// Result of one helm invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Output is the diagnostic text of the invocation: stderr when helm
// wrote any, stdout otherwise.
func (r Result) Output() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Runner runs the helm binary once.
//
// # Returns
//
// - Result: exit code and captured output. Non-zero exit is NOT an
// error; callers interpret it.
//
// - error: helm could not run at all (binary missing, context done).
type Runner interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

type execRunner struct {
	bin string
}

// NewRunner makes a Runner invoking the named binary ("helm", or a
// full path).
func NewRunner(bin string) Runner {
	return execRunner{bin: bin}
}

func (r execRunner) Run(ctx context.Context, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, xe.Wrap(ctxErr)
	}
	if err == nil {
		return result, nil
	}

	exitErr := new(exec.ExitError)
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, xe.Wrap(err)
}

// Chart points at the chart a release is deployed from.
type Chart struct {
	// chart reference: "repo/name", or a bare chart name resolved
	// against RepoURL.
	Ref string

	// exact chart version. Empty means latest.
	Version string

	// chart repository url. Empty relies on refs helm can already
	// resolve.
	RepoURL string
}

type Interface interface {
	// Deploy installs the release, or upgrades it when it already
	// exists.
	//
	// values are materialized into a scratch file which is removed on
	// every exit path.
	//
	// # Returns
	//
	// - error: ErrDeploymentFailed when helm exits non-zero, carrying
	// the captured diagnostic output.
	Deploy(ctx context.Context, namespace string, releaseName string, chart Chart, values map[string]any) error

	// Teardown uninstalls the release.
	//
	// # Returns
	//
	// - error: ErrTeardownFailed when helm exits non-zero, except when
	// the failure is "release not found" (uninstalling what is already
	// gone is success).
	Teardown(ctx context.Context, namespace string, releaseName string) error
}

type Config struct {
	Runner          Runner
	DeployTimeout   time.Duration
	TeardownTimeout time.Duration
	Logger          *log.Logger
}

func DefaultConfig() Config {
	return Config{
		Runner:          NewRunner("helm"),
		DeployTimeout:   5 * time.Minute,
		TeardownTimeout: time.Minute,
		Logger:          log.Default(),
	}
}

type Option func(*Config) *Config

func WithRunner(r Runner) Option {
	return func(c *Config) *Config {
		c.Runner = r
		return c
	}
}

func WithDeployTimeout(d time.Duration) Option {
	return func(c *Config) *Config {
		c.DeployTimeout = d
		return c
	}
}

func WithTeardownTimeout(d time.Duration) Option {
	return func(c *Config) *Config {
		c.TeardownTimeout = d
		return c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Config) *Config {
		c.Logger = l
		return c
	}
}

type client struct {
	runner          Runner
	deployTimeout   time.Duration
	teardownTimeout time.Duration
	logger          *log.Logger
}

var _ Interface = &client{}

func New(options ...Option) Interface {
	c := DefaultConfig()
	for _, option := range options {
		c = *option(&c)
	}
	return &client{
		runner:          c.Runner,
		deployTimeout:   c.DeployTimeout,
		teardownTimeout: c.TeardownTimeout,
		logger:          c.Logger,
	}
}

func (h *client) Deploy(
	ctx context.Context, namespace string, releaseName string,
	chart Chart, values map[string]any,
) error {
	ctx, cancel := context.WithTimeout(ctx, h.deployTimeout)
	defer cancel()

	if chart.RepoURL != "" {
		if repoName, ok := chartRepoName(chart.Ref); ok {
			h.ensureRepo(ctx, repoName, chart.RepoURL)
		}
	}

	valuesFile, err := writeValuesFile(values)
	if err != nil {
		return domerr.NewDeploymentFailedCausedBy(
			fmt.Sprintf("cannot write values for release %s", releaseName), err,
		)
	}
	defer os.Remove(valuesFile)

	args := []string{
		"upgrade", "--install", releaseName, chart.Ref,
		"--namespace", namespace,
		"--create-namespace",
		"--values", valuesFile,
	}
	if chart.Version != "" {
		args = append(args, "--version", chart.Version)
	}
	if chart.RepoURL != "" && !strings.Contains(chart.Ref, "/") {
		args = append(args, "--repo", chart.RepoURL)
	}

	h.logger.Printf(
		"deploying release %s (chart %s) into namespace %s",
		releaseName, chart.Ref, namespace,
	)
	result, err := h.runner.Run(ctx, args...)
	if err != nil {
		return domerr.NewDeploymentFailedCausedBy(
			fmt.Sprintf("helm could not run for release %s", releaseName), err,
		)
	}
	if result.ExitCode != 0 {
		return domerr.NewDeploymentFailed(fmt.Sprintf(
			"deploy of release %s failed (exit %d): %s",
			releaseName, result.ExitCode, result.Output(),
		))
	}
	return nil
}

func (h *client) Teardown(ctx context.Context, namespace string, releaseName string) error {
	ctx, cancel := context.WithTimeout(ctx, h.teardownTimeout)
	defer cancel()

	h.logger.Printf("uninstalling release %s from namespace %s", releaseName, namespace)
	result, err := h.runner.Run(
		ctx, "uninstall", releaseName, "--namespace", namespace,
	)
	if err != nil {
		return domerr.NewTeardownFailedCausedBy(
			fmt.Sprintf("helm could not run for release %s", releaseName), err,
		)
	}
	if result.ExitCode == 0 {
		return nil
	}
	if strings.Contains(strings.ToLower(result.Output()), "not found") {
		// already gone. uninstall is idempotent.
		h.logger.Printf("release %s is not found. nothing to uninstall", releaseName)
		return nil
	}
	return domerr.NewTeardownFailed(fmt.Sprintf(
		"uninstall of release %s failed (exit %d): %s",
		releaseName, result.ExitCode, result.Output(),
	))
}

// chartRepoName extracts the repository name from refs like
// "jupyterhub/jupyterhub". Bare names, filesystem paths and oci:// refs
// have none.
func chartRepoName(ref string) (string, bool) {
	if strings.HasPrefix(ref, ".") || strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return "", false
	}
	repoName, _, found := strings.Cut(ref, "/")
	if !found || repoName == "" {
		return "", false
	}
	return repoName, true
}

// ensureRepo registers & refreshes the chart repository. Best effort:
// "repo add" fails when the repo is known already, and a stale index
// only surfaces later as a deploy failure, so failures here are logged
// and not fatal.
func (h *client) ensureRepo(ctx context.Context, name string, url string) {
	if result, err := h.runner.Run(ctx, "repo", "add", name, url); err != nil {
		h.logger.Printf("cannot add helm repo %s (%s): %s", name, url, err)
	} else if result.ExitCode != 0 {
		h.logger.Printf("helm repo add %s exited %d: %s", name, result.ExitCode, result.Output())
	}

	if result, err := h.runner.Run(ctx, "repo", "update", name); err != nil {
		h.logger.Printf("cannot update helm repo %s: %s", name, err)
	} else if result.ExitCode != 0 {
		h.logger.Printf("helm repo update %s exited %d: %s", name, result.ExitCode, result.Output())
	}
}

func writeValuesFile(values map[string]any) (string, error) {
	f, err := os.CreateTemp("", "values-*.yaml")
	if err != nil {
		return "", xe.Wrap(err)
	}
	defer f.Close()

	if values == nil {
		values = map[string]any{}
	}
	content, err := yaml.Marshal(values)
	if err != nil {
		os.Remove(f.Name())
		return "", xe.Wrap(err)
	}
	if _, err := f.Write(content); err != nil {
		os.Remove(f.Name())
		return "", xe.Wrap(err)
	}
	return f.Name(), nil
}
