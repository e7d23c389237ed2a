package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

type clientRepository struct {
	store *Store
}

// NewClientRepository создаёт PostgreSQL-реализацию ClientRepository.
func NewClientRepository(store *Store) domain.ClientRepository {
	return &clientRepository{store: store}
}

func (r *clientRepository) Create(client domain.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clients (id, name, document) VALUES ($1, $2, $3)
		`, client.ID, client.Name, client.Document); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("client id already taken: %w", err)
			}
			return fmt.Errorf("insert client: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.NewPersistenceError("create client", err)
	}
	return nil
}

func (r *clientRepository) Update(client domain.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		return execExpectingRow(ctx, tx, `
			UPDATE clients SET name = $1, document = $2 WHERE id = $3
		`, "update client", client.Name, client.Document, client.ID)
	})
	return normalizeWriteErr("update client", err)
}

func (r *clientRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		err := execExpectingRow(ctx, tx, `DELETE FROM clients WHERE id = $1`, "delete client", id)
		if err != nil && isForeignKeyViolation(err) {
			return fmt.Errorf("client is referenced by orders: %w", err)
		}
		return err
	})
	return normalizeWriteErr("delete client", err)
}

func (r *clientRepository) FindByID(id string) (domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var client domain.Client
	err := r.store.db.QueryRowContext(ctx, `
		SELECT id, name, document FROM clients WHERE id = $1
	`, id).Scan(&client.ID, &client.Name, &client.Document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Client{}, domain.ErrNotFound
		}
		return domain.Client{}, domain.NewPersistenceError("find client", err)
	}
	return client, nil
}

func (r *clientRepository) FindAll() ([]domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, name, document FROM clients ORDER BY name, id
	`)
	if err != nil {
		return nil, domain.NewPersistenceError("list clients", err)
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		var client domain.Client
		if err := rows.Scan(&client.ID, &client.Name, &client.Document); err != nil {
			return nil, domain.NewPersistenceError("list clients", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("list clients", err)
	}
	return clients, nil
}

var _ domain.ClientRepository = (*clientRepository)(nil)
