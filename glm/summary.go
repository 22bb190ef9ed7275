package glm

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// Coefficient is one row of the fitted coefficient table.
type Coefficient struct {
	Term   string
	Est    float64
	StdErr float64
	Z      float64
	P      float64
}

// Coefficients returns the coefficient table with Wald z statistics and
// two-sided normal p-values.
func (m *Logit) Coefficients() ([]Coefficient, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("Logit", "Coefficients")
	}

	std := distuv.Normal{Mu: 0, Sigma: 1}
	out := make([]Coefficient, len(m.coefs))
	for j := range m.coefs {
		z := m.coefs[j] / m.stderrs[j]
		name := "(Intercept)"
		if j > 0 {
			if len(m.names) >= j {
				name = m.names[j-1]
			} else {
				name = fmt.Sprintf("x%d", j)
			}
		}
		out[j] = Coefficient{
			Term:   name,
			Est:    m.coefs[j],
			StdErr: m.stderrs[j],
			Z:      z,
			P:      2 * (1 - std.CDF(abs(z))),
		}
	}
	return out, nil
}

// Summary formats the coefficient table together with the fit statistics.
func (m *Logit) Summary() (string, error) {
	coefs, err := m.Coefficients()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-24s %12s %12s %8s %10s\n", "term", "estimate", "std.err", "z", "p")
	for _, c := range coefs {
		fmt.Fprintf(&sb, "%-24s %12.5f %12.5f %8.3f %10.4g\n", c.Term, c.Est, c.StdErr, c.Z, c.P)
	}
	fmt.Fprintf(&sb, "logLik %.3f  deviance %.3f  AIC %.3f  AICc %.3f  (n=%d, iter=%d)\n",
		m.LogLik(), m.Deviance(), m.AIC(), m.AICc(), m.nObs, m.nIter)
	return sb.String(), nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
