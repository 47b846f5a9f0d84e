package extraction

import "sort"

// neighbors8 lists the 8-connected offsets.
var neighbors8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// labelComponents labels the 8-connected foreground regions of mask.
// Labels are assigned in raster order of each region's first pixel.
func labelComponents(mask []uint8, width, height int) ([]int32, []ComponentStats) {
	labels := make([]int32, width*height)
	stats := []ComponentStats{{Width: width, Height: height}}

	var queue []int
	next := int32(1)
	for start, v := range mask {
		if v == 0 || labels[start] != 0 {
			continue
		}

		sx, sy := start%width, start/width
		minX, minY, maxX, maxY := sx, sy, sx, sy
		area := 0

		labels[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			area++

			x, y := idx%width, idx/width
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for _, d := range neighbors8 {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				n := ny*width + nx
				if mask[n] != 0 && labels[n] == 0 {
					labels[n] = next
					queue = append(queue, n)
				}
			}
		}

		stats = append(stats, ComponentStats{
			Left:   minX,
			Top:    minY,
			Width:  maxX - minX + 1,
			Height: maxY - minY + 1,
			Area:   area,
		})
		next++
	}

	bg := width * height
	for _, s := range stats[1:] {
		bg -= s.Area
	}
	stats[0].Area = bg
	return labels, stats
}

// segmentationOf labels mask into a fresh Segmentation.
func segmentationOf(mask []uint8, width, height int) *Segmentation {
	labels, stats := labelComponents(mask, width, height)
	return &Segmentation{Width: width, Height: height, Mask: mask, Labels: labels, Stats: stats}
}

// filterComponents keeps the labels accepted by keep and re-labels the
// resulting mask.
func filterComponents(seg *Segmentation, keep func(ComponentStats) bool) *Segmentation {
	accepted := make([]bool, len(seg.Stats))
	for i := 1; i < len(seg.Stats); i++ {
		accepted[i] = keep(seg.Stats[i])
	}

	mask := make([]uint8, len(seg.Labels))
	for i, l := range seg.Labels {
		if l > 0 && accepted[l] {
			mask[i] = 255
		}
	}
	return segmentationOf(mask, seg.Width, seg.Height)
}

// keepLargest keeps the n largest components by area. Equal areas keep the
// lower label.
func keepLargest(seg *Segmentation, n int) *Segmentation {
	if n >= seg.Count() {
		return seg
	}
	order := make([]int, 0, seg.Count())
	for i := 1; i < len(seg.Stats); i++ {
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return seg.Stats[order[a]].Area > seg.Stats[order[b]].Area
	})

	keepLabel := make([]bool, len(seg.Stats))
	for _, l := range order[:n] {
		keepLabel[l] = true
	}

	mask := make([]uint8, len(seg.Labels))
	for i, l := range seg.Labels {
		if l > 0 && keepLabel[l] {
			mask[i] = 255
		}
	}
	return segmentationOf(mask, seg.Width, seg.Height)
}

func emptySegmentation(width, height int) *Segmentation {
	return segmentationOf(make([]uint8, width*height), width, height)
}
