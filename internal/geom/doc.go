// Package geom holds the planar geometry shared by every guidance law:
// points, bearings, angle wrapping and the along-track / cross-track
// decomposition relative to a straight reference line.
package geom
