package crypto

// nullCipher implements the SRTP NULL cipher: it performs no transformation
// at all. It exists so policies can select "no confidentiality" through the
// same Cipher interface as every other algorithm, per RFC 3711 section
// 4.1.3, rather than special-casing "no cipher" at the pipeline level.
type nullCipher struct{}

func newNullCipher() *nullCipher { return &nullCipher{} }

func (c *nullCipher) Init(key []byte) error                 { return nil }
func (c *nullCipher) SetIV(iv [16]byte, dir Direction) error { return nil }
func (c *nullCipher) SetAAD(aad []byte) error                { return nil }
func (c *nullCipher) Encrypt(buf []byte, n int) (int, error) { return n, nil }
func (c *nullCipher) Decrypt(buf []byte, n int) (int, error) { return n, nil }
func (c *nullCipher) GetTag(out []byte) (int, error)         { return 0, nil }
func (c *nullCipher) Output(buf []byte, n int) error         { return nil }
func (c *nullCipher) KeyLength() int                         { return 0 }
func (c *nullCipher) TagLength() int                         { return 0 }
func (c *nullCipher) Algorithm() AlgorithmID                 { return AlgorithmNull }
func (c *nullCipher) IsAEAD() bool                           { return false }

// nullMac implements the SRTP NULL authentication transform: every computed
// tag is zero length. Used by *_null_auth policies and whenever Services
// excludes Authentication.
type nullMac struct{}

func newNullMac() *nullMac { return &nullMac{} }

func (m *nullMac) Init(key []byte) error                   { return nil }
func (m *nullMac) Start()                                  {}
func (m *nullMac) Update(b []byte)                         {}
func (m *nullMac) Compute(extra []byte, out []byte) []byte { return out[:0] }
func (m *nullMac) TagLength() int                          { return 0 }
func (m *nullMac) PrefixLength() int                       { return 0 }
func (m *nullMac) KeyLength() int                           { return 0 }
