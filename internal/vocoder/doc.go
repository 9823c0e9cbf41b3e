// Package vocoder implements duration-preserving pitch transposition of
// speech using a source-filter decomposition: a fundamental frequency
// contour, a smoothed spectral envelope and a per-bin aperiodicity profile
// are estimated once from the input, the contour is rescaled, and the
// signal is resynthesized at the new pitch with the original length.
package vocoder
