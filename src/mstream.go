package pscal

// Write appends p to the stream buffer
func (m *MStream) Write(p []byte) (int, error) {
	m.Buffer = append(m.Buffer, p...)
	return len(p), nil
}

// WriteString appends s to the stream buffer
func (m *MStream) WriteString(s string) (int, error) {
	m.Buffer = append(m.Buffer, s...)
	return len(s), nil
}

// Bytes returns the buffered data; the slice aliases the stream
func (m *MStream) Bytes() []byte {
	if m == nil {
		return nil
	}
	return m.Buffer
}

// Size returns the number of buffered bytes
func (m *MStream) Size() int {
	if m == nil {
		return 0
	}
	return len(m.Buffer)
}

// Reset empties the stream, keeping its buffer
func (m *MStream) Reset() {
	m.Buffer = m.Buffer[:0]
}
