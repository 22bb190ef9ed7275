// Package ctgstat is an exploratory statistical analysis of fetal
// cardiotocography recordings: 21 numeric features per exam, each exam
// classified Normal, Suspect, or Pathological.
//
// The analysis is a fixed pipeline, run by cmd/ctgstat:
//
//   - dataset: load and validate the recordings (CSV or XLSX), marginal
//     feature profiles, outcome recodings and reproducible splits
//   - multivar: Mardia normality, one-way MANOVA, a permutation test of
//     covariance homogeneity, Mahalanobis residual diagnostics
//   - preprocessing, decomposition: standardization and PCA, retaining the
//     first five components for the modeling stages
//   - gam: spline-based check that linear component effects suffice
//   - glm, selection: logistic regression by IRLS, exhaustive AICc subset
//     selection with an explicit rank-pick override
//   - crossval, metrics: repeated stratified K-fold prediction error, ROC
//     curves with named operating-point queries
//   - plsda, naivebayes: PLS-DA and Gaussian naive Bayes classification of
//     the two- and three-class outcomes
//
// Every estimator follows the same contract: construct, Fit, then query;
// querying before Fit returns a NotFittedError from pkg/errors.
package ctgstat
