// Command ctgstat runs the exploratory cardiotocography analysis end to end:
// data load, normality diagnostics, PCA, nonlinearity check, AICc subset
// selection, cross-validated prediction error, ROC operating points,
// group-difference tests, PLS-DA and naive Bayes classification. Each stage
// is isolated so one failed diagnostic does not abort the independent rest.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/crossval"
	"github.com/fhrlab/ctgstat/dataset"
	"github.com/fhrlab/ctgstat/decomposition"
	"github.com/fhrlab/ctgstat/gam"
	"github.com/fhrlab/ctgstat/glm"
	"github.com/fhrlab/ctgstat/metrics"
	"github.com/fhrlab/ctgstat/multivar"
	"github.com/fhrlab/ctgstat/naivebayes"
	"github.com/fhrlab/ctgstat/plots"
	"github.com/fhrlab/ctgstat/plsda"
	"github.com/fhrlab/ctgstat/preprocessing"
	"github.com/fhrlab/ctgstat/selection"
	"github.com/fhrlab/ctgstat/pkg/errors"
	"github.com/fhrlab/ctgstat/pkg/log"
)

// retained principal components and the permitted two-way interactions
// among them, both fixed by the analysis design.
const nComponents = 5

var permittedInteractions = [][2]int{{0, 1}, {0, 2}, {1, 2}}

var pcNames = []string{"PC1", "PC2", "PC3", "PC4", "PC5"}

// pipeline carries the intermediate state between stages. A stage that
// finds its prerequisite nil was starved by an upstream failure and skips.
type pipeline struct {
	cfg Config

	tbl    *dataset.Table
	yBin   []float64
	std    *mat.Dense // standardized feature matrix
	pca    *decomposition.PCA
	scores *mat.Dense // first nComponents PC scores

	chosen     *selection.Candidate
	chosenRank int

	singleCol  int
	singleName string
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Setup(cfg.LogLevel, false)

	errors.SetWarningHandler(func(w error) {
		l := log.L()
		l.Warn().Msg(w.Error())
	})

	p := &pipeline{cfg: cfg}

	p.run("load", p.stageLoad)
	p.run("recode", p.stageRecode)
	p.run("normality", p.stageNormality)
	p.run("pca", p.stagePCA)
	p.run("linearity", p.stageLinearity)
	p.run("dredge", p.stageDredge)
	p.run("single-predictor", p.stageSinglePredictor)
	p.run("cross-validation", p.stageCrossValidation)
	p.run("roc", p.stageROC)
	p.run("group-differences", p.stageGroupDifferences)
	p.run("pls-da", p.stagePLSDA)
	p.run("naive-bayes", p.stageNaiveBayes)
}

func (p *pipeline) run(name string, fn func(lg zerolog.Logger) error) {
	lg := log.Stage(name)
	lg.Info().Msg("start")
	if err := fn(lg); err != nil {
		if errors.Is(err, errStageSkipped) {
			lg.Warn().Err(err).Msg("stage skipped")
		} else {
			lg.Error().Err(err).Msg("stage failed")
		}
		return
	}
	lg.Info().Msg("done")
}

func (p *pipeline) stageLoad(lg zerolog.Logger) error {
	tbl, err := dataset.Load(p.cfg.DataPath)
	if err != nil {
		return err
	}
	p.tbl = tbl

	n, nf := tbl.Dims()
	lg.Info().Int("rows", n).Int("features", nf).Msg("data loaded")
	for class, count := range tbl.ClassCounts() {
		lg.Info().Stringer("class", class).Int("count", count).Msg("outcome level")
	}

	profiles, err := tbl.Profile()
	if err != nil {
		return err
	}
	fmt.Println("Feature profiles:")
	fmt.Printf("%-28s %10s %10s %10s %10s %8s %8s\n",
		"feature", "mean", "sd", "min", "max", "skew", "kurt")
	for _, fp := range profiles {
		fmt.Printf("%-28s %10.3f %10.3f %10.3f %10.3f %8.2f %8.2f\n",
			fp.Name, fp.Mean, fp.StdDev, fp.Min, fp.Max, fp.Skewness, fp.Kurtosis)
	}
	fmt.Println()
	return nil
}

func (p *pipeline) stageRecode(lg zerolog.Logger) error {
	if p.tbl == nil {
		return errSkipped("load")
	}
	p.yBin = p.tbl.RecodeBinary()
	pos := 0
	for _, v := range p.yBin {
		if v == 1 {
			pos++
		}
	}
	lg.Info().
		Int("abnormal", pos).
		Float64("prevalence", float64(pos)/float64(len(p.yBin))).
		Msg("binary outcome (normal vs suspect+pathological)")
	return nil
}

func (p *pipeline) stageNormality(lg zerolog.Logger) error {
	if p.tbl == nil {
		return errSkipped("load")
	}
	res, err := multivar.MardiaTest(p.tbl.X)
	if err != nil {
		return err
	}
	fmt.Println("Mardia multivariate normality:")
	fmt.Printf("  skewness %.4f  chi2 %.2f (df %.0f)  p %.4g\n",
		res.Skewness, res.SkewnessStat, res.SkewnessDF, res.SkewnessP)
	fmt.Printf("  kurtosis %.4f  z %.2f  p %.4g\n\n",
		res.Kurtosis, res.KurtosisStat, res.KurtosisP)
	if res.SkewnessP < 0.05 || res.KurtosisP < 0.05 {
		lg.Info().Msg("multivariate normality rejected; rank-based and permutation diagnostics carry more weight downstream")
	}
	return nil
}

func (p *pipeline) stagePCA(lg zerolog.Logger) error {
	if p.tbl == nil {
		return errSkipped("load")
	}

	scaler := preprocessing.NewStandardScaler()
	std, err := scaler.FitTransform(p.tbl.X)
	if err != nil {
		return err
	}
	p.std = std

	_, nf := std.Dims()
	pc := decomposition.NewPCA(nf)
	if err := pc.Fit(std); err != nil {
		return err
	}
	p.pca = pc

	ratios, err := pc.ExplainedVarianceRatio()
	if err != nil {
		return err
	}
	cum, err := pc.CumulativeExplained()
	if err != nil {
		return err
	}
	fmt.Println("PCA explained variance:")
	for i := 0; i < nComponents; i++ {
		fmt.Printf("  PC%d %6.2f%%  cumulative %6.2f%%\n", i+1, 100*ratios[i], 100*cum[i])
	}
	fmt.Println()
	lg.Info().Float64("cumulative", cum[nComponents-1]).Int("retained", nComponents).
		Msg("retaining first components per scree inspection")

	all, err := pc.Scores()
	if err != nil {
		return err
	}
	n, _ := all.Dims()
	p.scores = mat.DenseCopyOf(all.Slice(0, n, 0, nComponents))

	if p.cfg.PlotDir != "" {
		path := filepath.Join(p.cfg.PlotDir, "scree.png")
		if err := plots.Scree(ratios, path); err != nil {
			lg.Warn().Err(err).Msg("scree plot not written")
		} else {
			lg.Info().Str("path", path).Msg("scree plot written")
		}
	}
	return nil
}

func (p *pipeline) stageLinearity(lg zerolog.Logger) error {
	if p.scores == nil || p.yBin == nil {
		return errSkipped("pca")
	}
	res, err := gam.LinearityTest(p.scores, p.yBin, 4)
	if err != nil {
		return err
	}
	fmt.Println("Nonlinearity check (spline vs linear logistic fits):")
	fmt.Printf("  joint: deviance drop %.3f on %.0f df, p %.4g\n", res.Deviance, res.DF, res.P)
	for _, ct := range res.Components {
		fmt.Printf("  %s: deviance drop %.3f on %.0f df, p %.4g\n",
			pcNames[ct.Column], ct.Deviance, ct.DF, ct.P)
	}
	fmt.Println()
	if res.P > 0.05 {
		lg.Info().Msg("no evidence against linear component effects")
	} else {
		lg.Warn().Float64("p", res.P).Msg("nonlinearity detected; linear logistic models are an approximation here")
	}
	return nil
}

func (p *pipeline) stageDredge(lg zerolog.Logger) error {
	if p.scores == nil || p.yBin == nil {
		return errSkipped("pca")
	}

	ranking, err := selection.Dredge(p.scores, p.yBin, permittedInteractions)
	if err != nil {
		return err
	}
	lg.Info().Int("candidates", len(ranking.Models)).Msg("subset enumeration complete")

	fmt.Println("Top candidate models by AICc:")
	for i := 0; i < len(ranking.Models) && i < 5; i++ {
		c := ranking.Models[i]
		fmt.Printf("  rank %d: AICc %.3f  delta %.3f  terms %v\n",
			i, c.AICc, c.Delta, c.Terms(pcNames))
	}
	fmt.Println()

	rank := pickRank(ranking)
	chosen, err := ranking.Pick(rank)
	if err != nil {
		return err
	}
	p.chosen = chosen
	p.chosenRank = rank
	lg.Info().Int("rank", rank).Float64("delta", chosen.Delta).
		Strs("terms", chosen.Terms(pcNames)).Msg("model selected")

	// Refit with readable term labels for the printed table.
	refit := glm.NewLogit(glm.WithTermNames(chosen.Terms(pcNames)))
	design := designFor(p.scores, chosen)
	if err := refit.Fit(design, p.yBin); err != nil {
		return err
	}
	summary, err := refit.Summary()
	if err != nil {
		return err
	}
	fmt.Println("Selected model:")
	fmt.Println(summary)
	return nil
}

// pickRank implements the documented selection override: when the AICc-best
// model carries an interaction term with a non-significant Wald test that
// the runner-up omits, take the runner-up. Otherwise keep rank 0.
func pickRank(r *selection.Ranking) int {
	if len(r.Models) < 2 {
		return 0
	}
	best, second := r.Models[0], r.Models[1]
	if len(best.Interactions) == 0 || len(second.Interactions) >= len(best.Interactions) {
		return 0
	}
	coefs, err := best.Model.Coefficients()
	if err != nil {
		return 0
	}
	// Interaction coefficients sit after the intercept and main effects.
	for k := range best.Interactions {
		j := 1 + len(best.Mains) + k
		if j < len(coefs) && coefs[j].P > 0.05 {
			return 1
		}
	}
	return 0
}

func (p *pipeline) stageSinglePredictor(lg zerolog.Logger) error {
	if p.pca == nil || p.yBin == nil {
		return errSkipped("pca")
	}

	j, loading, err := p.pca.DominantFeature(0)
	if err != nil {
		return err
	}
	p.singleCol = j
	p.singleName = p.tbl.Names[j]
	lg.Info().Str("feature", p.singleName).Float64("loading", loading).
		Msg("dominant feature on first component")

	m := glm.NewLogit(glm.WithTermNames([]string{p.singleName}))
	if err := m.Fit(columnMatrix(p.tbl, j), p.yBin); err != nil {
		return err
	}
	summary, err := m.Summary()
	if err != nil {
		return err
	}
	fmt.Println("Single-predictor model (raw scale):")
	fmt.Println(summary)
	return nil
}

func (p *pipeline) stageCrossValidation(lg zerolog.Logger) error {
	if p.chosen == nil {
		return errSkipped("dredge")
	}

	chosen := p.chosen
	chosenTrainer := func(XTrain *mat.Dense, yTrain []float64, XTest *mat.Dense) ([]float64, error) {
		m := glm.NewLogit()
		if err := m.Fit(designFor(XTrain, chosen), yTrain); err != nil {
			return nil, err
		}
		return m.PredictProba(designFor(XTest, chosen))
	}
	res, err := crossval.KFoldMSPE(chosenTrainer, p.scores, p.yBin, 10, 10,
		crossval.WithSeed(p.cfg.Seed))
	if err != nil {
		return err
	}
	fmt.Printf("Cross-validated MSPE, selected model: %.5f (SE %.5f, %d folds x %d reps)\n",
		res.Mean, res.StdErr, res.K, res.B)

	if p.singleName == "" {
		lg.Warn().Msg("single-predictor stage did not complete; skipping its error estimate")
		fmt.Println()
		return nil
	}
	singleTrainer := func(XTrain *mat.Dense, yTrain []float64, XTest *mat.Dense) ([]float64, error) {
		m := glm.NewLogit()
		if err := m.Fit(XTrain, yTrain); err != nil {
			return nil, err
		}
		return m.PredictProba(XTest)
	}
	sres, err := crossval.KFoldMSPE(singleTrainer, columnMatrix(p.tbl, p.singleCol), p.yBin, 10, 10,
		crossval.WithSeed(p.cfg.Seed))
	if err != nil {
		return err
	}
	fmt.Printf("Cross-validated MSPE, single predictor (%s): %.5f (SE %.5f)\n\n",
		p.singleName, sres.Mean, sres.StdErr)

	lg.Info().Float64("mspe_selected", res.Mean).Float64("mspe_single", sres.Mean).
		Msg("prediction error comparison")
	return nil
}

func (p *pipeline) stageROC(lg zerolog.Logger) error {
	if p.chosen == nil {
		return errSkipped("dredge")
	}

	probs, err := p.chosen.Model.PredictProba(designFor(p.scores, p.chosen))
	if err != nil {
		return err
	}
	curve, err := metrics.ROC(p.yBin, probs)
	if err != nil {
		return err
	}

	fmt.Printf("ROC: AUC %.4f over %d operating points\n", curve.AUC(), len(curve.Points))

	youden, err := curve.Youden()
	if err != nil {
		return err
	}
	fmt.Printf("  Youden optimum: threshold %.3f  sens %.3f  spec %.3f\n",
		youden.Threshold, youden.Sensitivity, youden.Specificity)

	for _, target := range []float64{0.95, 0.98} {
		op, err := curve.ThresholdForSensitivity(target)
		if err != nil {
			lg.Warn().Float64("target", target).Err(err).Msg("sensitivity target unreachable")
			continue
		}
		fmt.Printf("  sens >= %.2f: threshold %.3f  sens %.3f  spec %.3f\n",
			target, op.Threshold, op.Sensitivity, op.Specificity)
	}
	fmt.Println()

	if p.cfg.PlotDir != "" {
		path := filepath.Join(p.cfg.PlotDir, "roc.png")
		if err := plots.ROCCurve(curve.Points, path); err != nil {
			lg.Warn().Err(err).Msg("roc plot not written")
		} else {
			lg.Info().Str("path", path).Msg("roc plot written")
		}
	}
	return nil
}

func (p *pipeline) stageGroupDifferences(lg zerolog.Logger) error {
	if p.std == nil {
		return errSkipped("pca")
	}
	labels := p.tbl.Labels()

	man, err := multivar.MANOVA(p.std, labels)
	if err != nil {
		return err
	}
	fmt.Println("Group differences across outcome classes:")
	fmt.Printf("  MANOVA: Wilks %.4f  F %.2f (%.0f, %.1f)  p %.4g\n",
		man.Wilks, man.F, man.DF1, man.DF2, man.P)

	hom, err := multivar.CovarianceHomogeneity(p.std, labels, 999, p.cfg.Seed)
	if err != nil {
		return err
	}
	fmt.Printf("  covariance homogeneity (permutation, %d perms): stat %.4f  p %.4g\n",
		hom.NPerm, hom.Stat, hom.P)

	ks, err := multivar.MahalanobisNormality(multivar.Residuals(p.std, labels), 3)
	if err != nil {
		return err
	}
	fmt.Printf("  residual Mahalanobis vs chi-squared: KS %.4f  p %.4g\n\n", ks.Stat, ks.P)

	if man.P < 0.05 {
		lg.Info().Msg("class mean vectors differ")
	}
	if hom.P < 0.05 || ks.P < 0.05 {
		lg.Warn().Msg("MANOVA assumptions strained; the permutation test is the sturdier evidence")
	}
	return nil
}

func (p *pipeline) stagePLSDA(lg zerolog.Logger) error {
	if p.std == nil {
		return errSkipped("pca")
	}

	labels3 := p.tbl.Labels()
	labels2 := make([]int, len(p.yBin))
	for i, v := range p.yBin {
		labels2[i] = int(v)
	}

	codings := []struct {
		name   string
		labels []int
	}{
		{"3-class", labels3},
		{"2-class", labels2},
	}

	fmt.Println("PLS-DA cross-validated error rates:")
	fmt.Printf("%-10s %12s %12s\n", "coding", "components", "error rate")
	for _, coding := range codings {
		for _, ncomp := range []int{2, 5, 10} {
			nc := ncomp
			trainer := func(XTrain *mat.Dense, labelsTrain []int, XTest *mat.Dense) ([]int, error) {
				m := plsda.NewPLSDA(nc)
				if err := m.Fit(XTrain, labelsTrain); err != nil {
					return nil, err
				}
				return m.Predict(XTest)
			}
			res, err := crossval.KFoldErrorRate(trainer, p.std, coding.labels, 10, 3,
				crossval.WithSeed(p.cfg.Seed))
			if err != nil {
				lg.Warn().Str("coding", coding.name).Int("components", ncomp).Err(err).
					Msg("pls-da evaluation failed")
				continue
			}
			fmt.Printf("%-10s %12d %9.4f +- %.4f\n", coding.name, ncomp, res.Mean, res.StdErr)
		}
	}
	fmt.Println()
	return nil
}

func (p *pipeline) stageNaiveBayes(lg zerolog.Logger) error {
	if p.tbl == nil {
		return errSkipped("load")
	}
	labels := p.tbl.Labels()

	trainIdx, testIdx, err := dataset.StratifiedSplit(labels, 0.2, p.cfg.Seed)
	if err != nil {
		return err
	}
	train := p.tbl.Subset(trainIdx)
	test := p.tbl.Subset(testIdx)

	nb := naivebayes.NewGaussianNB()
	if err := nb.Fit(train.X, train.Labels()); err != nil {
		return err
	}
	pred, err := nb.Predict(test.X)
	if err != nil {
		return err
	}

	cm, err := metrics.NewConfusion(test.Labels(), pred, 3)
	if err != nil {
		return err
	}
	fmt.Println("Gaussian naive Bayes, held-out 20%:")
	fmt.Println(cm.String())
	fmt.Printf("accuracy %.4f\n", cm.Accuracy())
	for c := 0; c < 3; c++ {
		fmt.Printf("  %s: recall %.3f  precision %.3f\n",
			dataset.Class(c+1), cm.Recall(c), cm.Precision(c))
	}

	lg.Info().Int("train", len(trainIdx)).Int("test", len(testIdx)).
		Float64("accuracy", cm.Accuracy()).Msg("naive bayes evaluated")
	return nil
}

// designFor builds a candidate's predictor matrix, keeping a nil design
// (intercept-only) as a nil interface rather than a typed nil.
func designFor(X *mat.Dense, c *selection.Candidate) mat.Matrix {
	if d := selection.BuildDesign(X, c.Mains, c.Interactions); d != nil {
		return d
	}
	return nil
}

func columnMatrix(t *dataset.Table, j int) *mat.Dense {
	col := t.Column(j)
	return mat.NewDense(len(col), 1, col)
}

// errStageSkipped marks a stage starved by an upstream failure, logged at
// warn level rather than as a failure of its own.
var errStageSkipped = errors.New("prerequisite stage did not complete")

func errSkipped(dep string) error {
	return errors.Wrap(errStageSkipped, dep)
}
