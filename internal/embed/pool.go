package embed

// meanPool averages token states over non-padding positions.
//
// hidden is flat [batch*seqLen*dim], mask is flat [batch*seqLen].
// The result is flat [batch*dim].
func meanPool(hidden []float32, mask []int64, batch, seqLen, dim int64) []float32 {
	out := make([]float32, batch*dim)

	for b := int64(0); b < batch; b++ {
		maskOff := b * seqLen
		hiddenOff := b * seqLen * dim
		outOff := b * dim

		var count float32
		for s := int64(0); s < seqLen; s++ {
			if mask[maskOff+s] == 0 {
				continue
			}
			count++
			tok := hidden[hiddenOff+s*dim : hiddenOff+(s+1)*dim]
			for d := int64(0); d < dim; d++ {
				out[outOff+d] += tok[d]
			}
		}
		if count == 0 {
			continue
		}
		for d := int64(0); d < dim; d++ {
			out[outOff+d] /= count
		}
	}
	return out
}
