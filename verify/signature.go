package verify

import (
	"context"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/pkg/errors"
)

// OpenPGPBackend checks a detached signature against an armored keyring
// (spec §4.8 step 3), grounded on the corpus's own openpgp.ReadArmoredKeyRing
// + signature-checking usage rather than a hand-rolled verifier.
type OpenPGPBackend struct {
	KeyRing openpgp.EntityList
}

// NewOpenPGPBackend parses an armored public keyring from keyringPath.
func NewOpenPGPBackend(keyringPath string) (*OpenPGPBackend, error) {
	f, err := os.Open(keyringPath)
	if err != nil {
		return nil, errors.Wrap(err, "verify: opening keyring")
	}
	defer f.Close()

	ring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, errors.Wrap(err, "verify: parsing keyring")
	}
	return &OpenPGPBackend{KeyRing: ring}, nil
}

// Verify checks sigPath as a detached signature over localPath against b's
// keyring. context is accepted for interface symmetry with Downloader; the
// check itself is local and doesn't block on I/O worth cancelling.
func (b *OpenPGPBackend) Verify(_ context.Context, localPath, sigPath string) error {
	payload, err := os.Open(localPath)
	if err != nil {
		return errors.Wrap(err, "verify: opening payload")
	}
	defer payload.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return errors.Wrap(err, "verify: missing signature")
	}
	defer sig.Close()

	if _, err := openpgp.CheckDetachedSignature(b.KeyRing, payload, sig, nil); err != nil {
		return errors.Wrap(err, "verify: signature check failed")
	}
	return nil
}
