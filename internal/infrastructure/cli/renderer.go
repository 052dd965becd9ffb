package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/doeshing/gitbrew/internal/application/command"
	"github.com/doeshing/gitbrew/internal/application/issues"
	"github.com/doeshing/gitbrew/internal/application/review"
	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Renderer prints results to the console. It also observes engine runs.
type Renderer struct {
	out      io.Writer
	markdown *glamour.TermRenderer

	header  lipgloss.Style
	command lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	faint   lipgloss.Style
}

// NewRenderer builds a renderer. Markdown is rendered with glamour only when
// styled is set; otherwise it is printed as-is.
func NewRenderer(out io.Writer, styled bool) *Renderer {
	lg := lipgloss.NewRenderer(out)
	r := &Renderer{
		out:     out,
		header:  lg.NewStyle().Bold(true),
		command: lg.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		ok:      lg.NewStyle().Foreground(lipgloss.Color("10")),
		warn:    lg.NewStyle().Foreground(lipgloss.Color("11")),
		bad:     lg.NewStyle().Foreground(lipgloss.Color("9")),
		faint:   lg.NewStyle().Faint(true),
	}
	if styled {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			r.markdown = md
		}
	}
	return r
}

// CommandSkipped implements ports.RunObserver.
func (r *Renderer) CommandSkipped(line string) {
	fmt.Fprintln(r.out, r.faint.Render("# "+line))
}

// Explanation implements ports.RunObserver.
func (r *Renderer) Explanation(cmd, explanation string) {
	fmt.Fprintln(r.out, r.header.Render("What `"+cmd+"` does:"))
	r.Markdown(explanation)
}

// CommandFinished implements ports.RunObserver.
func (r *Renderer) CommandFinished(result domain.ExecutionResult) {
	fmt.Fprintln(r.out, r.command.Render("$ "+result.Command))
	if out := strings.TrimRight(result.Stdout, "\n"); out != "" {
		fmt.Fprintln(r.out, out)
	}
	if errOut := strings.TrimRight(result.Stderr, "\n"); errOut != "" {
		fmt.Fprintln(r.out, r.warn.Render(errOut))
	}
	if result.State == domain.StateFailed {
		fmt.Fprintln(r.out, r.bad.Render(fmt.Sprintf("exit code %d", result.ExitCode)))
	}
}

// Report summarizes a finished run.
func (r *Renderer) Report(report domain.RunReport) {
	switch report.Status {
	case domain.RunCompleted:
		fmt.Fprintln(r.out, r.ok.Render(fmt.Sprintf("Done: %d command(s) ran.", len(report.Executed()))))
	case domain.RunHaltedOnDecline:
		fmt.Fprintln(r.out, r.warn.Render("Stopped: command declined, nothing after it ran."))
	case domain.RunHaltedOnFailure:
		if report.Failure != nil {
			fmt.Fprintln(r.out, r.bad.Render("Stopped: "+report.Failure.Error()))
		}
	}
}

// Error prints an interaction error without ending the session.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.out, r.bad.Render("error: "+err.Error()))
}

// Info prints a plain line.
func (r *Renderer) Info(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Markdown renders text with glamour when available.
func (r *Renderer) Markdown(text string) {
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(text); err == nil {
			fmt.Fprint(r.out, rendered)
			return
		}
	}
	fmt.Fprintln(r.out, strings.TrimRight(text, "\n"))
}

// Issues prints an issue table.
func (r *Renderer) Issues(list []domain.Issue) {
	if len(list) == 0 {
		fmt.Fprintln(r.out, "No issues.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, issue := range list {
		rows = append(rows, []string{"#" + strconv.Itoa(issue.Number), issue.State, issue.Title})
	}
	r.table([]string{"Number", "State", "Title"}, rows)
}

// IssueResult prints whatever an issues action produced.
func (r *Renderer) IssueResult(res issues.Result) {
	switch res.Action {
	case issues.ActionList:
		r.Issues(res.Issues)
	case issues.ActionCreate:
		if res.Created != nil {
			fmt.Fprintln(r.out, r.ok.Render(fmt.Sprintf("Created #%d %s", res.Created.Number, res.Created.URL)))
		}
	case issues.ActionFindDuplicates:
		if len(res.Duplicates) == 0 {
			fmt.Fprintln(r.out, "No duplicates found.")
			return
		}
		var rows [][]string
		for _, group := range res.Duplicates {
			for _, dup := range group.Duplicates {
				rows = append(rows, []string{
					fmt.Sprintf("#%d %s", group.Issue.Number, group.Issue.Title),
					fmt.Sprintf("#%d %s", dup.Issue.Number, dup.Issue.Title),
					fmt.Sprintf("%.3f", dup.Score),
				})
			}
		}
		r.table([]string{"Issue", "Possible duplicate", "Similarity"}, rows)
	case issues.ActionFindSimilar:
		if len(res.Similar) == 0 {
			fmt.Fprintln(r.out, "No similar issues.")
			return
		}
		rows := make([][]string, 0, len(res.Similar))
		for _, s := range res.Similar {
			rows = append(rows, []string{"#" + strconv.Itoa(s.Issue.Number), s.Issue.Title, fmt.Sprintf("%.3f", s.Score)})
		}
		r.table([]string{"Number", "Title", "Similarity"}, rows)
	case issues.ActionCancel:
	}
}

// PullRequests prints a pull request table.
func (r *Renderer) PullRequests(prs []domain.PullRequest) {
	if len(prs) == 0 {
		fmt.Fprintln(r.out, "No pull requests.")
		return
	}
	rows := make([][]string, 0, len(prs))
	for _, pr := range prs {
		rows = append(rows, []string{"#" + strconv.Itoa(pr.Number), pr.Title, pr.URL})
	}
	r.table([]string{"Number", "Title", "URL"}, rows)
}

// Reviews implements review.Presenter.
func (r *Renderer) Reviews(pr domain.PullRequest, reviews []review.FileReview) {
	fmt.Fprintln(r.out, r.header.Render(fmt.Sprintf("Review of #%d %s", pr.Number, pr.Title)))
	for _, rv := range reviews {
		r.Markdown("## " + rv.Filename + "\n\n" + rv.Review)
	}
}

// ReviewResult prints the outcome of a review action.
func (r *Renderer) ReviewResult(res review.Result) {
	switch res.Action {
	case review.ActionList:
		r.PullRequests(res.PullRequests)
	case review.ActionReview:
		if len(res.Skipped) > 0 {
			fmt.Fprintln(r.out, r.faint.Render("skipped: "+strings.Join(res.Skipped, ", ")))
		}
		if len(res.Reviews) == 0 {
			fmt.Fprintln(r.out, "Nothing to review.")
			return
		}
		if res.Posted {
			fmt.Fprintln(r.out, r.ok.Render(fmt.Sprintf("Posted %d review(s) to #%d.", len(res.Reviews), res.PullRequest.Number)))
		} else {
			fmt.Fprintln(r.out, "Reviews not posted.")
		}
	case review.ActionExit:
	}
}

// History prints history records, newest first.
func (r *Renderer) History(records []domain.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(r.out, "No history recorded yet.")
		return
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			string(rec.State),
			strconv.Itoa(rec.ExitCode),
			rec.Command,
			rec.Intent,
		})
	}
	r.table([]string{"When", "State", "Exit", "Command", "Intent"}, rows)
}

// Policy prints the safety policy table.
func (r *Renderer) Policy(prefix string, rules []command.PolicyRule) {
	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, []string{prefix + " " + rule.Token, string(rule.Verdict), rule.Description})
	}
	r.table([]string{"Command", "Verdict", "Description"}, rows)
	fmt.Fprintln(r.out, "Anything not listed as read_only asks for confirmation.")
}

// Health prints a doctor report.
func (r *Renderer) Health(report domain.HealthReport) {
	for _, check := range report.Checks {
		status := strings.ToUpper(string(check.Status))
		switch check.Status {
		case domain.HealthOK:
			status = r.ok.Render(status)
		case domain.HealthWarn:
			status = r.warn.Render(status)
		case domain.HealthError:
			status = r.bad.Render(status)
		}
		fmt.Fprintf(r.out, "[%s] %s - %s\n", status, check.Name, check.Details)
	}
}

func (r *Renderer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.faint).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(r.out, t.Render())
}

var _ ports.RunObserver = (*Renderer)(nil)
