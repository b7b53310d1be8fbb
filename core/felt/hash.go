package felt

type Hash Felt

func (h *Hash) String() string {
	return (*Felt)(h).String()
}

type ClassHash Hash

func (h *ClassHash) String() string {
	return (*Hash)(h).String()
}

func (h *ClassHash) IsZero() bool {
	return (*Felt)(h).IsZero()
}

func (h *ClassHash) UnmarshalJSON(data []byte) error {
	return (*Felt)(h).UnmarshalJSON(data)
}

func (h *ClassHash) MarshalJSON() ([]byte, error) {
	return (*Felt)(h).MarshalJSON()
}

func (h ClassHash) MarshalCBOR() ([]byte, error) {
	return Felt(h).MarshalCBOR()
}

func (h *ClassHash) UnmarshalCBOR(data []byte) error {
	return (*Felt)(h).UnmarshalCBOR(data)
}

// CasmClassHash is the hash of a class's compiled (CASM) artifact
type CasmClassHash ClassHash

func (h *CasmClassHash) String() string {
	return (*ClassHash)(h).String()
}

func (h *CasmClassHash) UnmarshalJSON(data []byte) error {
	return (*Felt)(h).UnmarshalJSON(data)
}

func (h *CasmClassHash) MarshalJSON() ([]byte, error) {
	return (*Felt)(h).MarshalJSON()
}

func (h CasmClassHash) MarshalCBOR() ([]byte, error) {
	return Felt(h).MarshalCBOR()
}

func (h *CasmClassHash) UnmarshalCBOR(data []byte) error {
	return (*Felt)(h).UnmarshalCBOR(data)
}
