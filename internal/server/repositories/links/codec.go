package links

import (
	"encoding/json"

	"github.com/dmitrijs2005/tnyr/internal/server/models"
)

// storedMaterial is the value layout used by the key-value backends.
type storedMaterial struct {
	Salt       []byte `json:"encryption_salt,omitempty"`
	IV         []byte `json:"iv"`
	Ciphertext []byte `json:"encrypted_url"`
}

func encodeMaterial(m models.Material) ([]byte, error) {
	return json.Marshal(storedMaterial{Salt: m.Salt, IV: m.IV, Ciphertext: m.Ciphertext})
}

func decodeMaterial(b []byte) (models.Material, error) {
	var s storedMaterial
	if err := json.Unmarshal(b, &s); err != nil {
		return models.Material{}, err
	}
	return models.Material{Salt: s.Salt, IV: s.IV, Ciphertext: s.Ciphertext}, nil
}
