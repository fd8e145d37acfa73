package bulkcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"hash"

	"github.com/embeddedtls/recordproto/record"
)

// CBCHMAC is the AES-CBC + HMAC family (TLS_ECDHE_ECDSA_WITH_AES_*_CBC_*),
// composed generically around the encrypt_then_mac flag on
// SecurityParameters, per spec §4.5: MAC-then-encrypt (RFC 5246) when
// false, encrypt-then-MAC (RFC 7366) when true.
type CBCHMAC struct {
	newHash func() hash.Hash
	tagLen  int
}

// NewCBCHMACSHA256 backs TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256.
func NewCBCHMACSHA256() *CBCHMAC { return &CBCHMAC{newHash: sha256.New, tagLen: 32} }

// NewCBCHMACSHA384 backs TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA384.
func NewCBCHMACSHA384() *CBCHMAC { return &CBCHMAC{newHash: sha512.New384, tagLen: 48} }

func (c *CBCHMAC) InitEncryptor(*record.SecurityParameters) error { return nil }
func (c *CBCHMAC) InitDecryptor(*record.SecurityParameters) error { return nil }

// Expansion is IV + MAC + up to one full block of padding, per the
// spec §4.5 record-expansion table (64 for SHA256, 80 for SHA384).
func (c *CBCHMAC) Expansion() int {
	return aes.BlockSize + c.tagLen + aes.BlockSize
}

func (c *CBCHMAC) Encrypt(ct *record.CompressedText, sp *record.SecurityParameters) (*record.CipherText, error) {
	block, err := aes.NewCipher(sp.WriteKey())
	if err != nil {
		return nil, fmt.Errorf("bulkcrypto: aes key setup: %w", record.ErrCryptoFailure)
	}

	if sp.EncryptThenMAC {
		iv, ciphertext, err := c.cbcEncrypt(block, ct.Payload)
		if err != nil {
			return nil, err
		}
		ivAndCipher := append(append([]byte{}, iv...), ciphertext...)
		tag := c.tag(sp.WriteMACKey(), ct.ImplicitSeq(), ct.ContentType(), ct.Version(), ivAndCipher)
		out := append(ivAndCipher, tag...)
		return ct.IntoCipherText(out), nil
	}

	tag := c.tag(sp.WriteMACKey(), ct.ImplicitSeq(), ct.ContentType(), ct.Version(), ct.Payload)
	withMAC := append(append([]byte{}, ct.Payload...), tag...)
	iv, ciphertext, err := c.cbcEncrypt(block, withMAC)
	if err != nil {
		return nil, err
	}
	out := append(append([]byte{}, iv...), ciphertext...)
	return ct.IntoCipherText(out), nil
}

func (c *CBCHMAC) Decrypt(ct *record.CipherText, sp *record.SecurityParameters) (*record.CompressedText, error) {
	block, err := aes.NewCipher(sp.ReadKey())
	if err != nil {
		return nil, fmt.Errorf("bulkcrypto: aes key setup: %w", record.ErrCryptoFailure)
	}

	if sp.EncryptThenMAC {
		// RFC 7366: verify the MAC before touching the ciphertext at
		// all, then decrypt, then strip padding — resolving the
		// ambiguity spec §9 flags in the source C++ in favor of the
		// RFC's mandated order.
		if len(ct.Payload) < c.tagLen+aes.BlockSize {
			return nil, record.ErrMacMismatch
		}
		ivAndCipher := ct.Payload[:len(ct.Payload)-c.tagLen]
		givenTag := ct.Payload[len(ct.Payload)-c.tagLen:]
		computed := c.tag(sp.ReadMACKey(), ct.ImplicitSeq(), ct.ContentType(), ct.Version(), ivAndCipher)
		if !hmac.Equal(computed, givenTag) {
			return nil, record.ErrMacMismatch
		}
		if len(ivAndCipher) <= aes.BlockSize || (len(ivAndCipher)-aes.BlockSize)%aes.BlockSize != 0 {
			return nil, record.ErrMacMismatch
		}
		iv := ivAndCipher[:aes.BlockSize]
		ciphertext := ivAndCipher[aes.BlockSize:]
		padded := make([]byte, len(ciphertext))
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
		plaintext, ok := removePadding(padded)
		if !ok {
			return nil, record.ErrMacMismatch
		}
		out := make([]byte, len(plaintext))
		copy(out, plaintext)
		return ct.IntoCompressed(out), nil
	}

	// RFC 5246 MAC-then-encrypt: decrypt first, strip padding, verify
	// MAC over the recovered plaintext. Padding-removal and the MAC
	// compare both use constant-time primitives so a failure at
	// either stage leaks no timing signal about which one failed.
	if len(ct.Payload) <= aes.BlockSize || (len(ct.Payload)-aes.BlockSize)%aes.BlockSize != 0 {
		return nil, record.ErrMacMismatch
	}
	iv := ct.Payload[:aes.BlockSize]
	ciphertext := ct.Payload[aes.BlockSize:]
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	withMAC, ok := removePadding(padded)
	if !ok || len(withMAC) < c.tagLen {
		// Compute a MAC anyway so a padding failure costs the same work
		// as a MAC mismatch.
		c.tag(sp.ReadMACKey(), ct.ImplicitSeq(), ct.ContentType(), ct.Version(), padded)
		return nil, record.ErrMacMismatch
	}
	plaintext := withMAC[:len(withMAC)-c.tagLen]
	givenTag := withMAC[len(withMAC)-c.tagLen:]
	computed := c.tag(sp.ReadMACKey(), ct.ImplicitSeq(), ct.ContentType(), ct.Version(), plaintext)
	if !hmac.Equal(computed, givenTag) {
		return nil, record.ErrMacMismatch
	}
	out := make([]byte, len(plaintext))
	copy(out, plaintext)
	return ct.IntoCompressed(out), nil
}

func (c *CBCHMAC) cbcEncrypt(block cipher.Block, plaintext []byte) (iv, ciphertext []byte, err error) {
	padded := pad(plaintext, aes.BlockSize)
	iv = make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("bulkcrypto: iv generation: %w", record.ErrCryptoFailure)
	}
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return iv, ciphertext, nil
}

func (c *CBCHMAC) tag(key []byte, seq uint64, ct record.ContentType, ver record.ProtocolVersion, authenticated []byte) []byte {
	mac := hmac.New(c.newHash, key)
	mac.Write(macInput(seq, ct, ver, authenticated))
	return mac.Sum(nil)
}

// pad applies TLS CBC padding: the final byte encodes the number of
// padding bytes that precede it, and every padding byte carries that
// same value, per RFC 5246 §6.2.3.2.
func pad(data []byte, blockSize int) []byte {
	padLen := blockSize - ((len(data) + 1) % blockSize)
	if padLen == blockSize {
		padLen = 0
	}
	out := make([]byte, len(data)+padLen+1)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// removePadding strips TLS CBC padding in close-to-constant time with
// respect to the padding length, so a malformed pad does not leak a
// timing oracle distinguishable from a MAC failure.
func removePadding(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}
	paddingLen := int(data[len(data)-1])
	good := subtle.ConstantTimeLessOrEq(paddingLen+1, len(data))

	toCheck := len(data)
	if toCheck > 256 {
		toCheck = 256
	}
	for i := 0; i < toCheck; i++ {
		idx := len(data) - 1 - i
		inPad := subtle.ConstantTimeLessOrEq(i, paddingLen)
		eq := subtle.ConstantTimeByteEq(data[idx], byte(paddingLen))
		good = subtle.ConstantTimeSelect(inPad, good&eq, good)
	}

	if good != 1 {
		return nil, false
	}
	return data[:len(data)-paddingLen-1], true
}
