package felt

// Address is a contract address. The zero address is reserved.
type Address Felt

func (a *Address) String() string {
	return (*Felt)(a).String()
}

func (a *Address) UnmarshalJSON(data []byte) error {
	return (*Felt)(a).UnmarshalJSON(data)
}

func (a *Address) MarshalJSON() ([]byte, error) {
	return (*Felt)(a).MarshalJSON()
}

func (a Address) MarshalCBOR() ([]byte, error) {
	return Felt(a).MarshalCBOR()
}

func (a *Address) UnmarshalCBOR(data []byte) error {
	return (*Felt)(a).UnmarshalCBOR(data)
}

func (a *Address) IsZero() bool {
	return (*Felt)(a).IsZero()
}

// StorageKey addresses one slot of a contract's storage
type StorageKey Felt

func (k *StorageKey) String() string {
	return (*Felt)(k).String()
}

func (k *StorageKey) UnmarshalJSON(data []byte) error {
	return (*Felt)(k).UnmarshalJSON(data)
}

func (k *StorageKey) MarshalJSON() ([]byte, error) {
	return (*Felt)(k).MarshalJSON()
}

func (k StorageKey) MarshalCBOR() ([]byte, error) {
	return Felt(k).MarshalCBOR()
}

func (k *StorageKey) UnmarshalCBOR(data []byte) error {
	return (*Felt)(k).UnmarshalCBOR(data)
}
