package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nfweeks/c4align/internal/alignment"
	"github.com/nfweeks/c4align/internal/c4"
	"github.com/nfweeks/c4align/internal/seqview"
)

// RYOContext bundles everything a RYO template (spec.md §6 "RYO") may
// reference: the alignment itself, the sequences it was computed over,
// the model-type name used for reporting, and the rank this alignment
// holds among a driver's reported results (1 for a single best alignment).
type RYOContext struct {
	Alignment  *alignment.Alignment
	Query      seqview.Sequence
	Target     seqview.Sequence
	ModelName  string
	Rank       int
	// UserData, if set, lets %Psc recompute a transition's per-op calc
	// score; left nil, %Psc reports 0 rather than requiring every caller
	// to thread DP context through a purely textual report.
	UserData c4.UserData
}

// RenderRYO tokenizes template and substitutes spec.md §6 RYO fields. A
// `{...}` block repeats once per transition run in the alignment, with
// `%P...` tokens resolved per-repetition; nested or unterminated `{...}`
// blocks are usage errors (spec.md §7).
func RenderRYO(template string, ctx RYOContext) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(template) {
		switch template[i] {
		case '{':
			end, err := matchingBrace(template, i)
			if err != nil {
				return "", err
			}
			body := template[i+1 : end]
			rendered, err := renderTransitionBlock(body, ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
			i = end + 1
		case '%':
			tok, nextI, err := readToken(template, i)
			if err != nil {
				return "", err
			}
			val, err := resolveAlignmentToken(tok, ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(val)
			i = nextI
		default:
			out.WriteByte(template[i])
			i++
		}
	}
	return out.String(), nil
}

// matchingBrace returns the index of the `}` matching the `{` at open,
// erroring on an unterminated block or a nested `{` (spec.md §7 "Usage
// errors: nested RYO {…} blocks").
func matchingBrace(template string, open int) (int, error) {
	for i := open + 1; i < len(template); i++ {
		switch template[i] {
		case '{':
			return 0, fmt.Errorf("%w: nested {…} block at offset %d", ErrFormat, i)
		case '}':
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unterminated {…} block starting at offset %d", ErrFormat, open)
}

// readToken reads one `%xx` token starting at i, returning its name (sans
// `%`) and the index just past it.
func readToken(template string, i int) (string, int, error) {
	j := i + 1
	for j < len(template) && isTokenChar(template[j]) {
		j++
	}
	if j == i+1 {
		return "", 0, fmt.Errorf("%w: bare %% at offset %d", ErrFormat, i)
	}
	return template[i+1 : j], j, nil
}

func isTokenChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func resolveAlignmentToken(tok string, ctx RYOContext) (string, error) {
	a := ctx.Alignment
	switch tok {
	case "qi":
		return ctx.Query.ID(), nil
	case "qd":
		return ctx.Query.Description(), nil
	case "ql":
		return strconv.Itoa(ctx.Query.Length()), nil
	case "qS":
		return strandSymbol(ctx.Query.Strand()), nil
	case "ti":
		return ctx.Target.ID(), nil
	case "td":
		return ctx.Target.Description(), nil
	case "tl":
		return strconv.Itoa(ctx.Target.Length()), nil
	case "tS":
		return strandSymbol(ctx.Target.Strand()), nil
	case "qab":
		return strconv.Itoa(a.Region.QStart), nil
	case "qae":
		return strconv.Itoa(a.Region.QStart + a.Region.QLength), nil
	case "qal":
		return strconv.Itoa(a.Region.QLength), nil
	case "tab":
		return strconv.Itoa(a.Region.TStart), nil
	case "tae":
		return strconv.Itoa(a.Region.TStart + a.Region.TLength), nil
	case "tal":
		return strconv.Itoa(a.Region.TLength), nil
	case "s":
		return strconv.Itoa(a.Score), nil
	case "g":
		return ctx.ModelName, nil
	case "r":
		return strconv.Itoa(ctx.Rank), nil
	case "pi":
		return formatPercent(identityStats(a)), nil
	case "em":
		eq, id, _, mm := alignmentStats(a)
		return fmt.Sprintf("%d %d %d", eq, id, mm), nil
	case "S":
		return WriteSugar(a, ctx.Query, ctx.Target), nil
	case "C":
		return WriteCigar(a, ctx.Query, ctx.Target), nil
	case "V":
		return WriteVulgar(a, ctx.Query, ctx.Target), nil
	default:
		return "", fmt.Errorf("%w: unknown RYO token %%%s", ErrFormat, tok)
	}
}

// renderTransitionBlock repeats body once per alignment op, substituting
// `%P...` tokens from that op's transition.
func renderTransitionBlock(body string, ctx RYOContext) (string, error) {
	var out strings.Builder
	q, t := ctx.Alignment.Region.QStart, ctx.Alignment.Region.TStart
	for _, op := range ctx.Alignment.Ops {
		tr := ctx.Alignment.Model.Transition(op.Transition)
		rendered, err := renderOpTokens(body, tr, op.Length, q, t, ctx)
		if err != nil {
			return "", err
		}
		out.WriteString(rendered)
		q += tr.DeltaQ * op.Length
		t += tr.DeltaT * op.Length
	}
	return out.String(), nil
}

func renderOpTokens(body string, tr *c4.Transition, length, qBegin, tBegin int, ctx RYOContext) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(body) {
		if body[i] != '%' {
			out.WriteByte(body[i])
			i++
			continue
		}
		tok, next, err := readToken(body, i)
		if err != nil {
			return "", err
		}
		val, err := resolvePTransitionToken(tok, tr, length, qBegin, tBegin, ctx)
		if err != nil {
			return "", err
		}
		out.WriteString(val)
		i = next
	}
	return out.String(), nil
}

func resolvePTransitionToken(tok string, tr *c4.Transition, length, qBegin, tBegin int, ctx RYOContext) (string, error) {
	if !strings.HasPrefix(tok, "P") {
		return "", fmt.Errorf("%w: token %%%s is not valid inside a {…} block (expected %%P...)", ErrFormat, tok)
	}
	switch tok {
	case "Pn":
		return tr.Name, nil
	case "Pl":
		return tr.Label.String(), nil
	case "Psc":
		if !tr.HasCalc() || ctx.UserData == nil {
			return "0", nil
		}
		calc := ctx.Alignment.Model.Calc(tr.Calc)
		return strconv.Itoa(calc.Score(qBegin, tBegin, ctx.UserData)), nil
	case "Pqb":
		return strconv.Itoa(qBegin), nil
	case "Ptb":
		return strconv.Itoa(tBegin), nil
	case "Pqa":
		return strconv.Itoa(tr.DeltaQ * length), nil
	case "Pta":
		return strconv.Itoa(tr.DeltaT * length), nil
	default:
		return "", fmt.Errorf("%w: unknown RYO transition token %%%s", ErrFormat, tok)
	}
}

// identityStats returns the fraction of match-labelled advance that is an
// exact (non-mismatch) base pair; c4 does not distinguish match from
// mismatch at the transition level (both use LabelMatch), so this reports
// the coarser "labelled match coverage" fraction instead of true identity.
func identityStats(a *alignment.Alignment) float64 {
	eq, _, total, _ := alignmentStats(a)
	if total == 0 {
		return 0
	}
	return float64(eq) / float64(total)
}

func alignmentStats(a *alignment.Alignment) (equivalenced, identical, total, mismatches int) {
	for _, op := range a.Ops {
		tr := a.Model.Transition(op.Transition)
		adv := maxInt(tr.DeltaQ, tr.DeltaT) * op.Length
		total += adv
		if tr.Label == c4.LabelMatch {
			equivalenced += adv
			identical += adv
		}
	}
	return equivalenced, identical, total, mismatches
}

func formatPercent(frac float64) string {
	return strconv.FormatFloat(frac*100, 'f', 1, 64)
}
