// Package cli is the console front end: the cobra command tree, the REPL,
// prompts and rendering.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/gitbrew/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	In      io.Reader
	Out     io.Writer
	// Getenv resolves secrets named in the config file.
	Getenv func(string) string
}

// skipContainer marks commands that run without the full dependency graph.
const skipContainer = "gitbrew/skip-container"

// session is the state shared by every command of one invocation.
type session struct {
	opts       Options
	configPath string
	verbose    bool

	prompter  *Prompter
	renderer  *Renderer
	spinner   *Spinner
	container *app.Container
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Getenv == nil {
		opts.Getenv = func(string) string { return "" }
	}
	tty := isTerminal(opts.Out)
	s := &session{
		opts:     opts,
		verbose:  opts.Verbose,
		prompter: NewPrompter(opts.In, opts.Out),
		renderer: NewRenderer(opts.Out, tty),
		spinner:  NewSpinner(opts.Out, tty),
	}

	root := &cobra.Command{
		Use:   "gitbrew [intent]",
		Short: "gitbrew - git from plain English",
		Long: "gitbrew turns natural-language requests into git commands, asks before " +
			"running anything that changes the repository, and helps with issues, " +
			"pull request reviews and READMEs.",
		Args:               cobra.ArbitraryArgs,
		PersistentPreRunE:  s.setup,
		PersistentPostRunE: s.teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return s.runIntent(cmd.Context(), args)
			}
			return s.repl(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.configPath, "config", "", "Config file (default ~/.gitbrew/config.yaml)")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", opts.Verbose, "Log at debug level")

	root.AddCommand(
		newRunCommand(s),
		newIssuesCommand(s),
		newReviewCommand(s),
		newReadmeCommand(s),
		newPolicyCommand(s),
		newHistoryCommand(s),
		newConfigCommand(s),
		newDoctorCommand(s),
		newVersionCommand(),
	)
	return root
}

func (s *session) setup(cmd *cobra.Command, _ []string) error {
	if skips(cmd) {
		return nil
	}
	container, err := app.BuildContainer(cmd.Context(), app.Options{
		ConfigPath:      s.configPath,
		Verbose:         s.verbose,
		Prompter:        s.prompter,
		Observer:        s.renderer,
		Getenv:          s.opts.Getenv,
		ReviewPresenter: s.renderer.Reviews,
		ReadmeProgress: func(done, total int, path string) {
			s.renderer.Info("[%d/%d] summarizing %s", done+1, total, path)
		},
		WrapCompleter: WithSpinner(s.spinner),
	})
	if err != nil {
		return err
	}
	s.container = container
	return nil
}

func (s *session) teardown(*cobra.Command, []string) error {
	if s.container == nil {
		return nil
	}
	return s.container.Close()
}

func skips(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipContainer] == "true" {
			return true
		}
	}
	return false
}

func skipAnnotation() map[string]string {
	return map[string]string{skipContainer: "true"}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && termIsTerminal(f)
}
