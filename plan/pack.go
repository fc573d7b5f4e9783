package plan

import "gpgpu/internal/bitset"

// Pack computes a storage permutation for values using greedy best-fit
// decreasing-by-fit.
//
// It starts from the identity order and repeatedly selects, among values
// not yet placed, the one whose channel count leaves the smallest
// non-negative remainder in the channel budget currently being filled.
// A perfect fit (remainder zero) is taken immediately; ties go to the
// first-seen (lowest index) candidate. When the budget is exhausted it
// refills to channelsMax and continues. This is O(n²) in the number of
// values, which is expected to be small in practice.
//
// Pack validates every value's channel count against [1, channelsMax]
// before packing; it returns *InvalidValueError (wrapping
// ErrInvalidValue) naming the first offender.
func Pack(values []Value, channelsMax int) ([]int, error) {
	for i, v := range values {
		if v.Channels < 1 || v.Channels > channelsMax {
			return nil, &InvalidValueError{Index: i, Channels: v.Channels, ChannelsMax: channelsMax}
		}
	}

	n := len(values)
	if n == 0 {
		return []int{}, nil
	}

	packed := make([]int, 0, n)
	// placed tracks which value indices have already been assigned a
	// slot using a fixed-size bit vector, so the best-fit scan below
	// need not allocate a fresh []bool.
	placed := bitset.New(n)
	channelsFree := channelsMax

	for len(packed) < n {
		best := -1
		bestRemainder := channelsMax + 1
		for i := 0; i < n; i++ {
			if placed.IsSet(i) {
				continue
			}
			c := values[i].Channels
			if c > channelsFree {
				continue
			}
			remainder := channelsFree - c
			if remainder < bestRemainder {
				bestRemainder = remainder
				best = i
				if remainder == 0 {
					break
				}
			}
		}
		if best == -1 {
			// Nothing fits what's left of this texture's budget;
			// refill and rescan. Every value satisfies c <= channelsMax
			// (checked above), so this always makes progress.
			channelsFree = channelsMax
			continue
		}
		packed = append(packed, best)
		placed.Set(best)
		channelsFree -= values[best].Channels
		if channelsFree <= 0 {
			channelsFree = channelsMax
		}
	}
	return packed, nil
}
