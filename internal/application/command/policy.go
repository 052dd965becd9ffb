package command

import (
	"sort"
	"strings"

	"github.com/doeshing/gitbrew/internal/domain"
)

// PolicyRule is one row of the safety policy table.
type PolicyRule struct {
	Token       string
	Verdict     domain.Verdict
	Description string
}

// policyTable is the single source of truth for command safety, keyed by the
// token following the tool prefix. Tokens missing from the table are mutating.
var policyTable = map[string]PolicyRule{
	// read-only subcommands
	"status":   {Verdict: domain.VerdictReadOnly, Description: "show the working tree status"},
	"diff":     {Verdict: domain.VerdictReadOnly, Description: "show changes between commits or the working tree"},
	"log":      {Verdict: domain.VerdictReadOnly, Description: "show commit logs"},
	"remote":   {Verdict: domain.VerdictReadOnly, Description: "list tracked repositories"},
	"tag":      {Verdict: domain.VerdictReadOnly, Description: "list tags"},
	"show":     {Verdict: domain.VerdictReadOnly, Description: "show objects"},
	"ls-files": {Verdict: domain.VerdictReadOnly, Description: "list files in the index"},

	// read-only global flags
	"-v":          {Verdict: domain.VerdictReadOnly, Description: "print the git version"},
	"--version":   {Verdict: domain.VerdictReadOnly, Description: "print the git version"},
	"-h":          {Verdict: domain.VerdictReadOnly, Description: "print usage"},
	"--help":      {Verdict: domain.VerdictReadOnly, Description: "print help"},
	"--html-path": {Verdict: domain.VerdictReadOnly, Description: "print the HTML documentation path"},
	"--man-path":  {Verdict: domain.VerdictReadOnly, Description: "print the manpath"},
	"--info-path": {Verdict: domain.VerdictReadOnly, Description: "print the Info files path"},

	// mutating subcommands, listed for documentation
	"clone":   {Verdict: domain.VerdictMutating, Description: "clone a repository into a new directory"},
	"init":    {Verdict: domain.VerdictMutating, Description: "create an empty repository"},
	"add":     {Verdict: domain.VerdictMutating, Description: "add file contents to the index"},
	"am":      {Verdict: domain.VerdictMutating, Description: "apply patches from a mailbox"},
	"mv":      {Verdict: domain.VerdictMutating, Description: "move or rename a file"},
	"restore": {Verdict: domain.VerdictMutating, Description: "restore working tree files"},
	"rm":      {Verdict: domain.VerdictMutating, Description: "remove files from the working tree and index"},
	"bisect":  {Verdict: domain.VerdictMutating, Description: "binary search for a bad commit"},
	"branch":  {Verdict: domain.VerdictMutating, Description: "list, create, or delete branches"},
	"commit":  {Verdict: domain.VerdictMutating, Description: "record changes to the repository"},
	"merge":   {Verdict: domain.VerdictMutating, Description: "join development histories"},
	"rebase":  {Verdict: domain.VerdictMutating, Description: "reapply commits on top of another base"},
	"reset":   {Verdict: domain.VerdictMutating, Description: "reset HEAD to a specified state"},
	"switch":  {Verdict: domain.VerdictMutating, Description: "switch branches"},
	"fetch":   {Verdict: domain.VerdictMutating, Description: "download objects and refs"},
	"pull":    {Verdict: domain.VerdictMutating, Description: "fetch and integrate"},
	"push":    {Verdict: domain.VerdictMutating, Description: "update remote refs"},
}

// Characters that let one command line start other processes or touch
// files. Substitutions expand inside double quotes too.
const (
	controlChars      = ";&|<>\n\r"
	substitutionChars = "`$"
)

// Classifier decides whether a command may run without confirmation.
type Classifier struct {
	prefix string
}

// NewClassifier builds a classifier that accepts lines starting with prefix.
func NewClassifier(prefix string) Classifier {
	if prefix == "" {
		prefix = domain.DefaultToolPrefix
	}
	return Classifier{prefix: prefix}
}

// Classify returns VerdictSkip for lines that do not start with the tool
// prefix, VerdictReadOnly for allow-listed tokens and VerdictMutating otherwise.
func (c Classifier) Classify(command string) domain.Verdict {
	fields := strings.Fields(command)
	if len(fields) == 0 || fields[0] != c.prefix {
		return domain.VerdictSkip
	}
	if len(fields) < 2 {
		return domain.VerdictMutating
	}
	if containsShellOperator(command) {
		return domain.VerdictMutating
	}
	rule, ok := policyTable[fields[1]]
	if !ok {
		return domain.VerdictMutating
	}
	return rule.Verdict
}

// Classify uses the default git prefix.
func Classify(command string) domain.Verdict {
	return NewClassifier(domain.DefaultToolPrefix).Classify(command)
}

// Policy returns the policy table sorted by verdict then token.
func Policy() []PolicyRule {
	rules := make([]PolicyRule, 0, len(policyTable))
	for token, rule := range policyTable {
		rule.Token = token
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Verdict != rules[j].Verdict {
			return rules[i].Verdict == domain.VerdictReadOnly
		}
		return rules[i].Token < rules[j].Token
	})
	return rules
}

// containsShellOperator reports whether command holds a control operator,
// redirect or substitution outside single quotes. Control characters inside
// double quotes are literal. An unterminated quote counts as an operator.
func containsShellOperator(command string) bool {
	var quote rune
	escaped := false
	for _, r := range command {
		switch {
		case escaped:
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			}
		case r == '\\':
			escaped = true
		case r == '\'' && quote == 0:
			quote = r
		case r == '"':
			if quote == '"' {
				quote = 0
			} else {
				quote = r
			}
		case strings.ContainsRune(substitutionChars, r):
			return true
		case quote == 0 && strings.ContainsRune(controlChars, r):
			return true
		}
	}
	return quote != 0 || escaped
}
