package githost

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// RemoteRepo resolves the repository of the working directory from its
// origin remote.
func RemoteRepo(ctx context.Context, exec ports.CommandExecutor) (domain.RepoRef, error) {
	out, err := exec.Execute(ctx, "git remote get-url origin")
	if err != nil {
		return domain.RepoRef{}, fmt.Errorf("%w: no origin remote: %s", domain.ErrInvalidRepositoryReference, strings.TrimSpace(out.Stderr))
	}
	return domain.ParseRepoRef(strings.TrimSpace(out.Stdout))
}
