// Command bgit walks a guided git workflow: show status, stage, commit,
// then authenticate and push, taking care of the ssh-agent lifecycle so
// the user never types a passphrase twice in a session.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/rootCircle/bgit/auth"
	"github.com/rootCircle/bgit/cli"
	"github.com/rootCircle/bgit/config"
	pexec "github.com/rootCircle/bgit/exec"
	"github.com/rootCircle/bgit/git"
	"github.com/rootCircle/bgit/logger"
	"github.com/rootCircle/bgit/paths"
	"github.com/rootCircle/bgit/process"
	"github.com/rootCircle/bgit/prompt"
	"github.com/rootCircle/bgit/transport"
	"github.com/rootCircle/bgit/workflow"
)

const usage = `bgit - guided git workflow

Usage:
  bgit [flags]                Run the workflow in the current repository
  bgit init                   Write .bgit/workflow.yaml with the default flow
  bgit create-creds [flags]   Generate a new SSH key pair
  bgit cleanup                Terminate orphaned bgit-spawned ssh-agents
  bgit check                  Check that required CLI tools are installed
  bgit visualize              Print the active workflow as a mermaid diagram

Flags:
  -C dir      Run as if started in dir instead of the current directory
  -debug      Enable debug logging
`

func main() {
	if err := run(); err != nil {
		prompt.Fail("%v", err)
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}

func run() error {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	repoFlag := flag.String("C", "", "run as if started in this directory")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logPath, err := logger.DefaultLogPath()
	if err != nil {
		return fmt.Errorf("failed to resolve log path: %w", err)
	}
	if err := logger.Init(logPath); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetDebug(*debugFlag)

	repoPath := *repoFlag
	if repoPath == "" {
		repoPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch flag.Arg(0) {
	case "", "run":
		return runWorkflow(ctx, repoPath)
	case "init":
		return runInit(repoPath)
	case "create-creds":
		return runCreateCreds(ctx, flag.Args()[1:])
	case "cleanup":
		return runCleanup(ctx)
	case "check":
		return runCheck()
	case "visualize":
		return runVisualize(repoPath)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", flag.Arg(0))
	}
}

func runWorkflow(ctx context.Context, repoPath string) error {
	if err := cli.ValidateRequired(cli.DefaultPrerequisites()); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ex := pexec.GetDefaultExecutor()
	svc := git.NewGitServiceWithExecutor(ex)
	ui := prompt.NewTerminal()

	store, err := auth.NewStore()
	if err != nil {
		return err
	}
	supervisor := auth.NewSupervisor(store, ex)
	enroll := auth.NewEnrollment(store.SSHDir(), cfg.SSHKeyFile(), ex, ui)
	pf := auth.NewPreflight(cfg, supervisor, enroll)
	negotiator := auth.NewNegotiator(cfg, supervisor, enroll, ui)
	authn := transport.NewAuthenticator(pf, negotiator)

	flowCfg, err := workflow.LoadAndMerge(repoPath)
	if err != nil {
		return err
	}
	if errs := workflow.Validate(flowCfg); len(errs) > 0 {
		for _, e := range errs {
			prompt.Warn("workflow config: %s", e.Error())
		}
		return fmt.Errorf("invalid workflow configuration (%d errors)", len(errs))
	}

	branch, err := svc.CurrentBranch(ctx, repoPath)
	if err != nil {
		return fmt.Errorf("not a git repository (or no commits yet): %w", err)
	}

	registry := workflow.DefaultRegistry(svc, authn, ui)
	engine := workflow.NewEngine(flowCfg, registry, ui, logger.WithComponent("workflow"))
	return engine.Run(ctx, repoPath, branch)
}

func runInit(repoPath string) error {
	fp, err := workflow.WriteTemplate(repoPath)
	if err != nil {
		return err
	}
	prompt.Status("Wrote %s", fp)
	return nil
}

func runCreateCreds(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-creds", flag.ExitOnError)
	algo := fs.String("t", "ed25519", "key algorithm (ed25519, rsa, ecdsa)")
	bits := fs.Int("b", 0, "key size in bits (rsa/ecdsa only)")
	keyPath := fs.String("f", "", "private key path (default ~/.ssh/id_<algo>)")
	comment := fs.String("C", "", "key comment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *keyPath
	if path == "" {
		sshDir, err := paths.EnsureSSHDir()
		if err != nil {
			return err
		}
		path = filepath.Join(sshDir, "id_"+*algo)
	}

	opts := auth.KeygenOptions{
		Algorithm: *algo,
		Bits:      *bits,
		Comment:   *comment,
		Path:      path,
	}
	if err := auth.GenerateKey(ctx, pexec.GetDefaultExecutor(), opts); err != nil {
		return err
	}
	prompt.Status("Generated %s", path)
	return nil
}

func runCleanup(ctx context.Context) error {
	store, err := auth.NewStore()
	if err != nil {
		return err
	}

	// The recorded agent is spared only while it is actually running.
	keepPID := 0
	if state := store.Load(); state != nil && state.Pid != "" {
		if pid, err := strconv.Atoi(state.Pid); err == nil && process.Alive(pid) {
			keepPID = pid
		}
	}

	killed, err := process.CleanupOrphanedAgents(auth.AgentSocketBasename, keepPID)
	if err != nil {
		return err
	}
	if killed == 0 {
		prompt.Status("No orphaned agents found.")
	} else {
		prompt.Status("Terminated %d orphaned agent(s).", killed)
	}
	return nil
}

func runCheck() error {
	results := cli.CheckAll(cli.DefaultPrerequisites())
	fmt.Print(cli.FormatCheckResults(results))
	return cli.ValidateRequired(cli.DefaultPrerequisites())
}

func runVisualize(repoPath string) error {
	cfg, err := workflow.LoadAndMerge(repoPath)
	if err != nil {
		return err
	}
	fmt.Print(workflow.GenerateMermaid(cfg))
	return nil
}
