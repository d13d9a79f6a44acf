package contentpipe

import (
	"context"
	"regexp"

	"github.com/postcraft/contentpipe/internal/pipeline"
)

// placeholderPattern matches @{source.expression} spans. Only the three
// known sources participate, so @{unknown.VAR} is left verbatim. The
// expression runs to the first closing brace: there is no escaping and no
// nesting inside a placeholder.
var placeholderPattern = regexp.MustCompile(`@\{(env|builtin|json)\.([^}]*)\}`)

// processContent substitutes every placeholder of one content string in a
// single left-to-right pass. Substituted text is not re-scanned. A fail-hard
// operation error aborts and surfaces; unresolvable placeholders stay as
// their literal text.
func (inv *invocation) processContent(ctx context.Context, content string) (string, error) {
	inv.ctx = ctx

	var hardErr error
	result := placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		if hardErr != nil {
			return match
		}
		groups := placeholderPattern.FindStringSubmatch(match)
		src, expr := groups[1], groups[2]

		replacement, ok, err := inv.resolveExpression(src, expr)
		if err != nil {
			hardErr = err
			return match
		}
		if !ok {
			inv.logger.Warn("unresolvable placeholder left in place", "placeholder", match)
			if inv.p.collector != nil {
				inv.p.collector.IncrementUnresolved()
			}
			return match
		}
		if inv.p.collector != nil {
			inv.p.collector.IncrementResolved()
		}
		return replacement
	})
	if hardErr != nil {
		return "", hardErr
	}
	return result, nil
}

// resolveExpression parses the inner expression, resolves its key against
// the named source and threads the value through the operation pipeline.
// ok=false signals the unresolvable fail-soft outcome.
func (inv *invocation) resolveExpression(src, expr string) (string, bool, error) {
	pl := pipeline.Parse(expr)
	if pl.Key == "" {
		return "", false, nil
	}

	v, ok := inv.lookup(src, pl.Key)
	if !ok {
		return "", false, nil
	}

	out, err := inv.executor.Run(pl, v)
	if err != nil {
		return "", false, err
	}
	return out.String(), true, nil
}
