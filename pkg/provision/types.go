package provision

import (
	"github.com/bianoble/provision/internal/cache"
	"github.com/bianoble/provision/internal/conda"
	"github.com/bianoble/provision/internal/config"
	"github.com/bianoble/provision/internal/engine"
	"github.com/bianoble/provision/internal/installer"
)

// Type aliases re-export internal types as the public API.

type Config = config.Config
type Result = engine.Result
type CacheStatus = engine.CacheStatus
type PruneResult = engine.PruneResult
type Step = engine.Step
type StepError = engine.StepError
type Lookup = cache.Lookup
type Runner = conda.Runner
type Command = conda.Command
type ExitError = conda.ExitError
type HTTPClient = installer.HTTPClient
