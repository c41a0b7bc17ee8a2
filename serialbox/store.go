package serialbox

// Store is a serializer opened for reading together with its savepoint
// tree.
type Store struct {
	*Serializer
	tree *Tree
}

// OpenStore opens <dir>/<prefix> read-only and builds its savepoint tree.
func OpenStore(dir, prefix string, opts ...Option) (*Store, error) {
	s, err := Open(dir, prefix, ModeRead, opts...)
	if err != nil {
		return nil, err
	}
	t, err := s.Tree()
	if err != nil {
		s.Close()
		return nil, err
	}
	return &Store{Serializer: s, tree: t}, nil
}

// Tree returns the savepoint tree.
func (st *Store) Tree() *Tree { return st.tree }

// Close releases the savepoints and then the serializer.
func (st *Store) Close() error {
	if st.Serializer.closed {
		return nil
	}
	treeErr := st.tree.Close()
	if err := st.Serializer.Close(); err != nil {
		return err
	}
	return treeErr
}
