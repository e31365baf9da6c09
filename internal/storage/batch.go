package storage

// Batches split the stored levels into fixed-size chunks so that independent
// workers can process them. Each level is split on its own: the last chunk of
// a level may be shorter, and no chunk spans two levels.

// NumBatches returns the number of batches of batchElems elements of
// elemBytes bytes each.
func (s *MipStorage) NumBatches(batchElems, elemBytes int) int {
	batchBytes := batchElems * elemBytes
	if batchBytes <= 0 || s.void {
		return 0
	}

	n := 0
	for l := range s.LODCount() {
		n += (s.LODSize(l) + batchBytes - 1) / batchBytes
	}
	return n
}

// Batch returns the bytes of batch index i, or nil when i is out of range.
// The slice aliases the storage.
func (s *MipStorage) Batch(i, batchElems, elemBytes int) []byte {
	batchBytes := batchElems * elemBytes
	if batchBytes <= 0 || i < 0 || s.void {
		return nil
	}

	for l := range s.LODCount() {
		size := s.LODSize(l)
		n := (size + batchBytes - 1) / batchBytes
		if i < n {
			start := s.offsets[l] + i*batchBytes
			end := s.offsets[l] + min((i+1)*batchBytes, size)
			return s.arena[start:end:end]
		}
		i -= n
	}
	return nil
}
