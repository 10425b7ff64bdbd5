package contribuinte

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo      *Repository
	Historico *historico.Repository
}

func NewHandler(repo *Repository, hist *historico.Repository) *Handler {
	return &Handler{Repo: repo, Historico: hist}
}

type createDTO struct {
	Nome      string `json:"nome"`
	Documento string `json:"documento"`
	Email     string `json:"email"`
	Telefone  string `json:"telefone"`
	Endereco  string `json:"endereco"`
}

// POST /api/contribuintes
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var in createDTO
	if err := utils.DecodificarJSON(r, &in); err != nil {
		utils.EscreverErro(w, r, "contribuinte.criar", err)
		return
	}
	in.Nome = strings.TrimSpace(in.Nome)
	doc := SomenteDigitos(in.Documento)
	if in.Nome == "" {
		utils.EscreverErro(w, r, "contribuinte.criar", erros.Invalido("O campo 'nome' é obrigatório").ComCampo("nome", "obrigatório"))
		return
	}
	if len(doc) != 11 && len(doc) != 14 {
		utils.EscreverErro(w, r, "contribuinte.criar", erros.Invalido("Documento deve ser CPF (11) ou CNPJ (14 dígitos)").ComCampo("documento", "inválido"))
		return
	}

	c := &Contribuinte{Nome: in.Nome, Documento: doc, Email: in.Email, Telefone: in.Telefone, Endereco: in.Endereco}
	err := h.Repo.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if _, err := NewRepository(tx).FindByDocumento(doc); err == nil {
			return erros.Invalido("Já existe contribuinte com este documento").ComCampo("documento", "duplicado")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := NewRepository(tx).Create(c); err != nil {
			return err
		}
		return h.Historico.WithDB(tx).Auditar(auth.UsuarioDaRequisicao(r), historico.AcaoCriar, "Contribuinte", c.ID, nil, c)
	})
	if err != nil {
		if _, ok := erros.Como(err); !ok {
			err = erros.InternoErr(err, "erro ao criar contribuinte")
		}
		utils.EscreverErro(w, r, "contribuinte.criar", err)
		return
	}
	utils.EscreverJSON(w, http.StatusCreated, c)
}

// GET /api/contribuintes?busca=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := NewRepository(h.Repo.DB.WithContext(r.Context())).List(r.URL.Query().Get("busca"))
	if err != nil {
		utils.EscreverErro(w, r, "contribuinte.listar", erros.InternoErr(err, "erro ao listar contribuintes"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, list)
}

// GET /api/contribuintes/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.EscreverErro(w, r, "contribuinte.buscar", erros.Invalido("ID inválido"))
		return
	}
	c, err := NewRepository(h.Repo.DB.WithContext(r.Context())).FindByID(uint(id))
	if err != nil {
		utils.EscreverErro(w, r, "contribuinte.buscar", erros.DeBusca(err, "Contribuinte"))
		return
	}
	utils.EscreverJSON(w, http.StatusOK, c)
}
