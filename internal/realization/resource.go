package realization

import (
	"fmt"
	"strconv"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
)

// Topic is a stream resource
type Topic struct {
	resourceBase
	Partitions        int
	ReplicationFactor int
}

// NewTopic creates a Topic realization
func NewTopic(desc descriptor.ResourceDescriptor, partitions, replicationFactor int) (*Topic, error) {
	base, err := newResourceBase(desc, descriptor.Topic)
	if err != nil {
		return nil, err
	}
	if partitions < 0 || replicationFactor < 0 {
		return nil, fmt.Errorf("topic '%s' has negative partitions or replication factor", desc.RealizationID)
	}
	return &Topic{resourceBase: base, Partitions: partitions, ReplicationFactor: replicationFactor}, nil
}

// Descriptor implements ResourceRealization
func (t *Topic) Descriptor() descriptor.ResourceDescriptor {
	extra := map[string]string{}
	if t.Partitions > 0 {
		extra["partitions"] = strconv.Itoa(t.Partitions)
	}
	if t.ReplicationFactor > 0 {
		extra["replication-factor"] = strconv.Itoa(t.ReplicationFactor)
	}
	return t.describe(extra)
}

// Bucket is an object store resource
type Bucket struct {
	resourceBase
	Encrypted bool
}

// NewBucket creates a Bucket realization
func NewBucket(desc descriptor.ResourceDescriptor, encrypted bool) (*Bucket, error) {
	base, err := newResourceBase(desc, descriptor.Bucket)
	if err != nil {
		return nil, err
	}
	return &Bucket{resourceBase: base, Encrypted: encrypted}, nil
}

// Descriptor implements ResourceRealization
func (b *Bucket) Descriptor() descriptor.ResourceDescriptor {
	return b.describe(map[string]string{"encrypted": strconv.FormatBool(b.Encrypted)})
}

// Volume is a persistent volume resource
type Volume struct {
	resourceBase
	SizeGiB int
}

// NewVolume creates a Volume realization
func NewVolume(desc descriptor.ResourceDescriptor, sizeGiB int) (*Volume, error) {
	base, err := newResourceBase(desc, descriptor.Volume)
	if err != nil {
		return nil, err
	}
	return &Volume{resourceBase: base, SizeGiB: sizeGiB}, nil
}

// Descriptor implements ResourceRealization
func (v *Volume) Descriptor() descriptor.ResourceDescriptor {
	if v.SizeGiB == 0 {
		return v.describe(nil)
	}
	return v.describe(map[string]string{"size-gib": strconv.Itoa(v.SizeGiB)})
}

// Secret is a secret resource
type Secret struct {
	resourceBase
}

// NewSecret creates a Secret realization
func NewSecret(desc descriptor.ResourceDescriptor) (*Secret, error) {
	base, err := newResourceBase(desc, descriptor.Secret)
	if err != nil {
		return nil, err
	}
	return &Secret{resourceBase: base}, nil
}

// Descriptor implements ResourceRealization
func (s *Secret) Descriptor() descriptor.ResourceDescriptor {
	return s.describe(nil)
}
