package rtc

import (
	"reflect"

	"github.com/thesyncim/rtcbridge/pkg/registry"
)

// forward performs the native half of a register or unregister.
type forward func() (*CallResult, error)

// register adds o to the bucket for key and forwards the registration. The
// native call is made even when o was already present. If the call fails or
// the engine rejects it, a fresh local entry is rolled back.
func register[K comparable, O comparable](reg *registry.Registry[K, O], key K, o O, fwd forward) error {
	if err := checkObserver(o); err != nil {
		return err
	}
	added := reg.Add(key, o)
	if err := settle(fwd()); err != nil {
		if added {
			reg.Remove(key, o)
		}
		return err
	}
	return nil
}

// unregister removes o from the bucket for key and forwards the
// unregistration. The native call is made even when the bucket does not
// exist, in which case ErrObserverNotRegistered is returned once it succeeds.
// A failed call puts a removed observer back where it was.
func unregister[K comparable, O comparable](reg *registry.Registry[K, O], key K, o O, fwd forward) error {
	if err := checkObserver(o); err != nil {
		return err
	}
	index, found := reg.Remove(key, o)
	if err := settle(fwd()); err != nil {
		if index >= 0 {
			reg.Insert(key, index, o)
		}
		return err
	}
	if !found {
		return ErrObserverNotRegistered
	}
	return nil
}

// checkObserver rejects observers the registry cannot hold. Interface
// equality panics on uncomparable dynamic types, so this runs before any
// registry access.
func checkObserver(o any) error {
	if o == nil {
		return ErrNilObserver
	}
	if !reflect.TypeOf(o).Comparable() {
		return ErrObserverNotComparable
	}
	return nil
}

func settle(res *CallResult, err error) error {
	if err != nil {
		return err
	}
	return res.Err()
}
