package svgpath

import (
	"math"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an off-axis ellipse.
const maxDx float64 = math.Pi / 8

// kappa is the control point distance, relative to the radius,
// of the cubic approximating a quarter of circle.
const kappa = 0.5522847498307936

// AddRect adds a closed rectangle with top-left corner (x, y).
func (p *Path) AddRect(x, y, w, h float64) {
	p.Start(Point{x, y})
	p.Line(Point{x + w, y})
	p.Line(Point{x + w, y + h})
	p.Line(Point{x, y + h})
	p.Stop(true)
}

// AddRoundRect adds a rectangle with rounded corners of radius
// rx in the x axis and ry in the y axis. Radii larger than
// half the side are clamped.
func (p *Path) AddRoundRect(x, y, w, h, rx, ry float64) {
	if rx <= 0 || ry <= 0 {
		p.AddRect(x, y, w, h)
		return
	}
	rx, ry = math.Min(rx, w/2), math.Min(ry, h/2)
	kx, ky := kappa*rx, kappa*ry
	maxX, maxY := x+w, y+h

	p.Start(Point{x + rx, y})
	p.Line(Point{maxX - rx, y})
	p.CubeBezier(Point{maxX - rx + kx, y}, Point{maxX, y + ry - ky}, Point{maxX, y + ry})
	p.Line(Point{maxX, maxY - ry})
	p.CubeBezier(Point{maxX, maxY - ry + ky}, Point{maxX - rx + kx, maxY}, Point{maxX - rx, maxY})
	p.Line(Point{x + rx, maxY})
	p.CubeBezier(Point{x + rx - kx, maxY}, Point{x, maxY - ry + ky}, Point{x, maxY - ry})
	p.Line(Point{x, y + ry})
	p.CubeBezier(Point{x, y + ry - ky}, Point{x + rx - kx, y}, Point{x + rx, y})
	p.Stop(true)
}

// AddEllipse adds a closed axis aligned ellipse, starting at
// its right-most point and running clockwise (in a y-down space).
func (p *Path) AddEllipse(cx, cy, rx, ry float64) {
	kx, ky := kappa*rx, kappa*ry
	p.Start(Point{cx + rx, cy})
	p.CubeBezier(Point{cx + rx, cy + ky}, Point{cx + kx, cy + ry}, Point{cx, cy + ry})
	p.CubeBezier(Point{cx - kx, cy + ry}, Point{cx - rx, cy + ky}, Point{cx - rx, cy})
	p.CubeBezier(Point{cx - rx, cy - ky}, Point{cx - kx, cy - ry}, Point{cx, cy - ry})
	p.CubeBezier(Point{cx + kx, cy - ry}, Point{cx + rx, cy - ky}, Point{cx + rx, cy})
	p.Stop(true)
}

// AddLine adds an open segment.
func (p *Path) AddLine(x1, y1, x2, y2 float64) {
	p.Start(Point{x1, y1})
	p.Line(Point{x2, y2})
	p.Stop(false)
}

// AddPolyline adds the segments joining the given coordinates,
// which are read in pairs. A trailing odd coordinate is ignored.
func (p *Path) AddPolyline(coords []float64, closed bool) {
	if len(coords) < 2 {
		return
	}
	p.Start(Point{coords[0], coords[1]})
	for i := 2; i+1 < len(coords); i += 2 {
		p.Line(Point{coords[i], coords[i+1]})
	}
	p.Stop(closed)
}

// ArcTo adds an elliptical arc from the current point to end, with
// the SVG endpoint parametrization. rot is in degrees. It returns the
// end point.
// Out-of-range radii are corrected as required by SVG: negative radii
// are made positive, too small radii are scaled up, and a zero radius
// degenerates to a line.
func (p *Path) ArcTo(current Point, rx, ry, rot float64, largeArc, sweep bool, end Point) Point {
	if current.equals(end) {
		return end
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.Line(end)
		return end
	}
	cx, cy := findEllipseCenter(&rx, &ry, rot*math.Pi/180, current.X, current.Y, end.X, end.Y, sweep, !largeArc)
	return p.addArc(arcParams{rx: rx, ry: ry, rotDeg: rot, largeArc: largeArc, sweep: sweep, end: end}, cx, cy, current)
}

type arcParams struct {
	rx, ry, rotDeg  float64
	largeArc, sweep bool
	end             Point
}

// addArc adds an arc to the adder p, given the ellipse center (cx, cy)
// and the current point
func (p *Path) addArc(arc arcParams, cx, cy float64, current Point) Point {
	rotX := arc.rotDeg * math.Pi / 180 // Convert degress to radians
	startAngle := math.Atan2(current.Y-cy, current.X-cx) - rotX
	endAngle := math.Atan2(arc.end.Y-cy, arc.end.X-cx) - rotX
	deltaTheta := endAngle - startAngle
	arcBig := math.Abs(deltaTheta) > math.Pi

	// Approximate ellipse using cubic bezeir splines
	etaStart := math.Atan2(math.Sin(startAngle)/arc.ry, math.Cos(startAngle)/arc.rx)
	etaEnd := math.Atan2(math.Sin(endAngle)/arc.ry, math.Cos(endAngle)/arc.rx)
	deltaEta := etaEnd - etaStart
	if arcBig != arc.largeArc {
		if deltaEta < 0 {
			deltaEta += math.Pi * 2
		} else {
			deltaEta -= math.Pi * 2
		}
	}
	// This check might be needed if the center point of the elipse is
	// at the midpoint of the start and end lines.
	if deltaEta < 0 && arc.sweep {
		deltaEta += math.Pi * 2
	} else if deltaEta >= 0 && !arc.sweep {
		deltaEta -= math.Pi * 2
	}

	// Round up to determine number of cubic splines to approximate bezier curve
	segs := int(math.Abs(deltaEta)/maxDx) + 1
	dEta := deltaEta / float64(segs) // span of each segment
	// Approximate the ellipse using a set of cubic bezier curves by the method of
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	// https://www.spaceroots.org/documents/elllipse/elliptical-arc.pdf
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3
	lx, ly := current.X, current.Y
	sinTheta, cosTheta := math.Sin(rotX), math.Cos(rotX)
	ldx, ldy := ellipsePrime(arc.rx, arc.ry, sinTheta, cosTheta, etaStart)
	for i := 1; i <= segs; i++ {
		eta := etaStart + dEta*float64(i)
		var px, py float64
		if i == segs {
			px, py = arc.end.X, arc.end.Y // Just makes the end point exact; no roundoff error
		} else {
			px, py = ellipsePointAt(arc.rx, arc.ry, sinTheta, cosTheta, eta, cx, cy)
		}
		dx, dy := ellipsePrime(arc.rx, arc.ry, sinTheta, cosTheta, eta)
		p.CubeBezier(Point{lx + alpha*ldx, ly + alpha*ldy},
			Point{px - alpha*dx, py - alpha*dy}, Point{px, py})
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	return Point{lx, ly}
}

// ellipsePrime gives tangent vectors for parameterized elipse; a, b, radii, eta parameter
func ellipsePrime(a, b, sinTheta, cosTheta, eta float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}

// findEllipseCenter locates the center of the Ellipse if it exists. If it does not exist,
// the radius values will be increased minimally for a solution to be possible
// while preserving the ra to rb ratio.  ra and rb arguments are pointers that can be
// checked after the call to see if the values changed. This method uses coordinate transformations
// to reduce the problem to finding the center of a circle that includes the origin
// and an arbitrary point. The center of the circle is then transformed
// back to the original coordinates and returned.
func findEllipseCenter(ra, rb *float64, rotX, startX, startY, endX, endY float64, sweep, smallArc bool) (cx, cy float64) {
	cos, sin := math.Cos(rotX), math.Sin(rotX)

	// Move origin to start point
	nx, ny := endX-startX, endY-startY

	// Rotate ellipse x-axis to coordinate x-axis
	nx, ny = nx*cos+ny*sin, -nx*sin+ny*cos
	// Scale X dimension so that ra = rb
	nx *= *rb / *ra // Now the ellipse is a circle radius rb; therefore foci and center coincide

	midX, midY := nx/2, ny/2
	midlenSq := midX*midX + midY*midY

	var hr float64
	if *rb**rb < midlenSq {
		// Requested ellipse does not exist; scale ra, rb to fit. Length of
		// span is greater than max width of ellipse, must scale *ra, *rb
		nrb := math.Sqrt(midlenSq)
		if *ra == *rb {
			*ra = nrb // prevents roundoff
		} else {
			*ra = *ra * nrb / *rb
		}
		*rb = nrb
	} else {
		hr = math.Sqrt(*rb**rb-midlenSq) / math.Sqrt(midlenSq)
	}
	// Notice that if hr is zero, both answers are the same.
	if sweep == smallArc {
		cx = midX + midY*hr
		cy = midY - midX*hr
	} else {
		cx = midX - midY*hr
		cy = midY + midX*hr
	}

	// reverse scale
	cx *= *ra / *rb
	//Reverse rotate and translate back to original coordinates
	return cx*cos - cy*sin + startX, cx*sin + cy*cos + startY
}
